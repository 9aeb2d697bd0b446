// Package protocol defines the JSON wire envelopes and the boundary handler
// that turns raw inbound bytes into orchestrated responses. Everything past
// this boundary works with typed values; everything before it is untrusted.
package protocol

// MessageTypeTranscription is the only inbound message type the core accepts.
const MessageTypeTranscription = "transcription"

// MessageTypeResponse is the type tag on every successful outbound message.
const MessageTypeResponse = "response"

// Inbound is one client message, usually a finished speech transcription.
type Inbound struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	SessionID string `json:"session_id"`

	// Persona optionally overrides the session persona from this message on.
	Persona string `json:"persona,omitempty"`
}

// Outbound is the answer to one inbound message.
type Outbound struct {
	Type                 string `json:"type"`
	Text                 string `json:"text"`
	AwaitingConfirmation bool   `json:"awaiting_confirmation"`

	// TraceID correlates this response with server logs. Opaque to clients.
	TraceID string `json:"trace_id,omitempty"`
}

// ErrorEnvelope reports a request that never reached the orchestrator.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

// Validation and failure reasons carried in ErrorEnvelope. These exact
// strings are part of the wire contract.
const (
	ErrInvalidJSON      = "Invalid JSON"
	ErrMissingSessionID = "Missing session_id"
	ErrMissingText      = "Missing text"
	ErrInternal         = "Internal error"
)
