package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parley-dev/parley/internal/catalog"
	"github.com/parley-dev/parley/internal/reasoning"
	"github.com/parley-dev/parley/internal/session"
)

// fakeChatClient captures the request and returns a canned response.
type fakeChatClient struct {
	lastReq openai.ChatCompletionRequest
	resp    openai.ChatCompletionResponse
	err     error
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func textResponse(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: text},
		}},
	}
}

func TestComplete_TextAnswer(t *testing.T) {
	client := &fakeChatClient{resp: textResponse("You logged 8 hours today.")}
	svc := New(client, "", nil)

	outcome, err := svc.Complete(context.Background(), reasoning.Request{
		SystemPrompt: "You are a helpful assistant.",
		History:      []session.Turn{session.UserTurn("what did I log?")},
	})

	require.NoError(t, err)
	assert.Equal(t, reasoning.KindText, outcome.Kind)
	assert.Equal(t, "You logged 8 hours today.", outcome.Text)

	// Request shape: system preamble first, then history, default model.
	require.Len(t, client.lastReq.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, client.lastReq.Messages[0].Role)
	assert.Equal(t, "gpt-4o-mini", client.lastReq.Model)
}

func TestComplete_ToolProposal(t *testing.T) {
	client := &fakeChatClient{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					ID:   "call_1",
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      "log_time",
						Arguments: `{"project":"INTERNAL","hours":8}`,
					},
				}},
			},
		}},
	}}
	svc := New(client, "gpt-4o", nil)

	outcome, err := svc.Complete(context.Background(), reasoning.Request{
		History: []session.Turn{session.UserTurn("log 8 hours on INTERNAL")},
		Tools: []catalog.Descriptor{
			{Name: "log_time", Destructive: true},
		},
	})

	require.NoError(t, err)
	require.Equal(t, reasoning.KindToolCall, outcome.Kind)
	require.NotNil(t, outcome.Proposal)
	assert.Equal(t, "call_1", outcome.Proposal.ID)
	assert.Equal(t, "log_time", outcome.Proposal.Name)
	assert.Equal(t, "INTERNAL", outcome.Proposal.Args["project"])

	// Tool definitions were forwarded.
	require.Len(t, client.lastReq.Tools, 1)
	assert.Equal(t, "log_time", client.lastReq.Tools[0].Function.Name)
}

func TestComplete_HistoryConversionPreservesToolLinkage(t *testing.T) {
	client := &fakeChatClient{resp: textResponse("ok")}
	svc := New(client, "", nil)

	history := []session.Turn{
		session.UserTurn("show entries"),
		session.AssistantToolCallTurn(session.ToolCall{
			ID: "call_9", Name: "list_time_entries", Args: map[string]any{"project": "INTERNAL"},
		}),
		session.ToolResultTurn("call_9", `[{"hours":8}]`),
	}

	_, err := svc.Complete(context.Background(), reasoning.Request{History: history})
	require.NoError(t, err)

	msgs := client.lastReq.Messages
	require.Len(t, msgs, 3)
	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, "call_9", msgs[1].ToolCalls[0].ID)
	assert.Equal(t, openai.ChatMessageRoleTool, msgs[2].Role)
	assert.Equal(t, "call_9", msgs[2].ToolCallID)
}

func TestComplete_APIErrorSurfaces(t *testing.T) {
	client := &fakeChatClient{err: errors.New("connection refused")}
	svc := New(client, "", nil)

	_, err := svc.Complete(context.Background(), reasoning.Request{
		History: []session.Turn{session.UserTurn("hello")},
	})
	require.Error(t, err)
}

func TestComplete_MalformedToolArguments(t *testing.T) {
	client := &fakeChatClient{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				ToolCalls: []openai.ToolCall{{
					ID:       "call_2",
					Type:     openai.ToolTypeFunction,
					Function: openai.FunctionCall{Name: "log_time", Arguments: `{not json`},
				}},
			},
		}},
	}}
	svc := New(client, "", nil)

	_, err := svc.Complete(context.Background(), reasoning.Request{
		History: []session.Turn{session.UserTurn("log time")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed tool arguments")
}
