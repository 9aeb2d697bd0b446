package protocol

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/parley-dev/parley/internal/orchestrator"
	"github.com/parley-dev/parley/internal/session"
)

// Handler is the wire boundary: it validates envelopes, resolves the session,
// delegates to the orchestrator, and serializes the answer. It never mutates
// a session on a request it rejects.
type Handler struct {
	registry  *session.Registry
	orch      *orchestrator.Orchestrator
	farewells map[string]bool
	logger    *slog.Logger
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Registry *session.Registry
	Orch     *orchestrator.Orchestrator

	// Farewells are utterances that end the session instead of being
	// reasoned about. Matched case-insensitively after trimming.
	Farewells []string

	Logger *slog.Logger
}

// NewHandler builds a Handler.
func NewHandler(opts HandlerOptions) *Handler {
	farewells := make(map[string]bool, len(opts.Farewells))
	for _, f := range opts.Farewells {
		farewells[normalizeUtterance(f)] = true
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Handler{
		registry:  opts.Registry,
		orch:      opts.Orch,
		farewells: farewells,
		logger:    opts.Logger,
	}
}

// Handle processes one raw inbound message and always returns a serializable
// response: a response envelope or an error envelope, never a raw failure.
func (h *Handler) Handle(ctx context.Context, raw []byte) (out []byte) {
	traceID := uuid.NewString()

	// The orchestration path must not take the process down or leak
	// internals to the wire, whatever goes wrong inside it.
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("panic in message handling", "trace_id", traceID, "panic", r)
			out = marshalError(ErrInternal)
		}
	}()

	var msg Inbound
	if err := json.Unmarshal(raw, &msg); err != nil {
		return marshalError(ErrInvalidJSON)
	}
	if strings.TrimSpace(msg.SessionID) == "" {
		return marshalError(ErrMissingSessionID)
	}
	if strings.TrimSpace(msg.Text) == "" {
		return marshalError(ErrMissingText)
	}

	sess, created := h.registry.GetOrCreate(msg.SessionID)
	if created {
		h.logger.Info("session started", "session_id", msg.SessionID, "trace_id", traceID)
	}
	if msg.Persona != "" {
		sess.SetPersona(msg.Persona)
	}

	if h.farewells[normalizeUtterance(msg.Text)] {
		h.registry.End(msg.SessionID)
		h.logger.Info("session ended by farewell", "session_id", msg.SessionID, "trace_id", traceID)
		return marshalOutbound(Outbound{
			Type:    MessageTypeResponse,
			Text:    orchestrator.Goodbye(),
			TraceID: traceID,
		})
	}

	result := h.orch.HandleMessage(ctx, sess, msg.Text)

	return marshalOutbound(Outbound{
		Type:                 MessageTypeResponse,
		Text:                 result.Text,
		AwaitingConfirmation: result.AwaitingConfirmation,
		TraceID:              traceID,
	})
}

func marshalOutbound(msg Outbound) []byte {
	out, err := json.Marshal(msg)
	if err != nil {
		return marshalError(ErrInternal)
	}
	return out
}

func marshalError(reason string) []byte {
	out, err := json.Marshal(ErrorEnvelope{Error: reason})
	if err != nil {
		// ErrorEnvelope is a single string field; this cannot fail.
		return []byte(`{"error":"Internal error"}`)
	}
	return out
}

func normalizeUtterance(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	return strings.Trim(s, ".,!?")
}
