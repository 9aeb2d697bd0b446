package session

// Role tags an entry in a session's conversation history. The set is closed:
// consumers switch over it exhaustively rather than comparing free-form
// strings.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a structured tool invocation proposed by the reasoning service.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Turn is one entry in conversation history.
//
// A user turn carries plain text. An assistant turn carries either plain text
// or a requested tool invocation, never both. A tool turn carries the
// invocation's call id and the result text. Construct turns only through the
// functions below so those shapes hold.
type Turn struct {
	Role Role

	// Text is the user utterance, assistant reply, or tool result.
	Text string

	// ToolCall is set only on assistant tool-invocation turns.
	ToolCall *ToolCall

	// CallID is set only on tool turns and matches the originating
	// assistant turn's ToolCall.ID.
	CallID string
}

// UserTurn builds a user turn from an utterance.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// AssistantTextTurn builds an assistant turn carrying a plain-text reply.
func AssistantTextTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text}
}

// AssistantToolCallTurn builds an assistant turn carrying a tool invocation.
func AssistantToolCallTurn(call ToolCall) Turn {
	c := call
	return Turn{Role: RoleAssistant, ToolCall: &c}
}

// ToolResultTurn builds a tool turn carrying an execution result.
func ToolResultTurn(callID, result string) Turn {
	return Turn{Role: RoleTool, CallID: callID, Text: result}
}
