// Package openai adapts OpenAI-compatible chat-completion endpoints to the
// reasoning.Service interface, using native tool calling.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/parley-dev/parley/internal/catalog"
	"github.com/parley-dev/parley/internal/reasoning"
	"github.com/parley-dev/parley/internal/session"
)

const defaultModel = "gpt-4o-mini"

// ChatClient is the slice of the SDK client the service needs.
// *openai.Client satisfies it; tests substitute a fake.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service implements reasoning.Service over the OpenAI chat API.
type Service struct {
	client ChatClient
	model  string
	logger *slog.Logger
}

// New creates a Service. An empty model falls back to gpt-4o-mini.
func New(client ChatClient, model string, logger *slog.Logger) *Service {
	if model == "" {
		model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, model: model, logger: logger}
}

// NewWithAPIKey creates a Service backed by the real SDK client.
func NewWithAPIKey(apiKey, model string, logger *slog.Logger) *Service {
	return New(openai.NewClient(apiKey), model, logger)
}

// Complete implements reasoning.Service.
func (s *Service) Complete(ctx context.Context, req reasoning.Request) (*reasoning.Outcome, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: toChatMessages(req.SystemPrompt, req.History),
		Tools:    toChatTools(req.Tools),
	}

	resp, err := s.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		call, err := fromChatToolCall(msg.ToolCalls[0])
		if err != nil {
			return nil, err
		}
		s.logger.Debug("model proposed tool call", "tool", call.Name, "call_id", call.ID)
		return reasoning.ToolCallOutcome(call), nil
	}

	s.logger.Debug("model produced text answer", "finish_reason", resp.Choices[0].FinishReason)
	return reasoning.TextOutcome(msg.Content), nil
}

// toChatMessages converts the system preamble and session history to chat
// messages, preserving tool-call linkage via tool_call_id.
func toChatMessages(systemPrompt string, history []session.Turn) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if systemPrompt != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}

	for _, turn := range history {
		switch turn.Role {
		case session.RoleUser:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: turn.Text,
			})
		case session.RoleAssistant:
			if turn.ToolCall != nil {
				args, err := json.Marshal(turn.ToolCall.Args)
				if err != nil {
					args = []byte("{}")
				}
				msgs = append(msgs, openai.ChatCompletionMessage{
					Role: openai.ChatMessageRoleAssistant,
					ToolCalls: []openai.ToolCall{{
						ID:   turn.ToolCall.ID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      turn.ToolCall.Name,
							Arguments: string(args),
						},
					}},
				})
			} else {
				msgs = append(msgs, openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: turn.Text,
				})
			}
		case session.RoleTool:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: turn.CallID,
				Content:    turn.Text,
			})
		}
	}
	return msgs
}

// toChatTools converts catalog descriptors to OpenAI tool definitions.
func toChatTools(descs []catalog.Descriptor) []openai.Tool {
	if len(descs) == 0 {
		return nil
	}
	tools := make([]openai.Tool, 0, len(descs))
	for _, d := range descs {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return tools
}

// fromChatToolCall parses one SDK tool call into the internal form.
func fromChatToolCall(tc openai.ToolCall) (session.ToolCall, error) {
	args := map[string]any{}
	if tc.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			return session.ToolCall{}, fmt.Errorf("malformed tool arguments for %s: %w", tc.Function.Name, err)
		}
	}
	id := tc.ID
	if id == "" {
		id = uuid.NewString()
	}
	return session.ToolCall{ID: id, Name: tc.Function.Name, Args: args}, nil
}
