// Package gemini adapts the Google Gemini API to the reasoning.Service
// interface.
package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/genai"

	"github.com/parley-dev/parley/internal/reasoning"
)

const defaultModel = "gemini-2.0-flash"

// Service implements reasoning.Service for Google Gemini.
type Service struct {
	client GeminiClient
	model  string
	logger *slog.Logger
}

// New creates a Service. An empty model falls back to gemini-2.0-flash.
func New(client GeminiClient, model string, logger *slog.Logger) *Service {
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, model: model, logger: logger}
}

// Complete implements reasoning.Service.
func (s *Service) Complete(ctx context.Context, req reasoning.Request) (*reasoning.Outcome, error) {
	contents := toGeminiContents(req.History)
	config := &genai.GenerateContentConfig{
		SafetySettings: defaultSafetySettings(),
	}
	if req.SystemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(req.SystemPrompt)},
		}
	}
	if len(req.Tools) > 0 {
		config.Tools = toGeminiTools(req.Tools)
	}

	resp, err := s.client.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	outcome, err := fromGeminiResponse(resp)
	if err != nil {
		return nil, err
	}
	if outcome.Kind == reasoning.KindToolCall {
		s.logger.Debug("model proposed tool call", "tool", outcome.Proposal.Name, "call_id", outcome.Proposal.ID)
	}
	return outcome, nil
}

// mapGeminiError maps Gemini API errors to wrapped errors the caller can log.
func mapGeminiError(err error) error {
	if apiErr, ok := err.(*genai.APIError); ok {
		switch apiErr.Code {
		case 401, 403:
			return fmt.Errorf("gemini authentication failed: %w", err)
		case 429:
			return fmt.Errorf("gemini rate limit exceeded: %w", err)
		case 500, 502, 503, 504:
			return fmt.Errorf("gemini service unavailable: %w", err)
		default:
			return fmt.Errorf("gemini API error: %w", err)
		}
	}
	return fmt.Errorf("gemini request failed: %w", err)
}

// newCallID supplies call identifiers since Gemini function calls carry none.
func newCallID() string {
	return "call_" + uuid.NewString()
}
