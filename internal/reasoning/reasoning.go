// Package reasoning isolates the nondeterministic external reasoning service
// behind a narrow interface so the orchestrator's control flow is fully
// testable with a deterministic fake.
package reasoning

import (
	"context"
	"fmt"

	"github.com/parley-dev/parley/internal/catalog"
	"github.com/parley-dev/parley/internal/session"
)

// Kind discriminates what the reasoning service produced.
type Kind string

const (
	// KindText is a final natural-language answer.
	KindText Kind = "text"
	// KindToolCall is one proposed tool invocation.
	KindToolCall Kind = "tool_call"
)

// Request carries everything one completion needs: the fixed system preamble
// (persona + formatting rules), the session history, and the tool catalog.
type Request struct {
	SystemPrompt string
	History      []session.Turn
	Tools        []catalog.Descriptor
}

// Outcome is the service's answer: either natural-language text or exactly
// one proposed tool invocation, never both.
type Outcome struct {
	Kind     Kind
	Text     string
	Proposal *session.ToolCall
}

// TextOutcome builds a text outcome.
func TextOutcome(text string) *Outcome {
	return &Outcome{Kind: KindText, Text: text}
}

// ToolCallOutcome builds a tool-proposal outcome.
func ToolCallOutcome(call session.ToolCall) *Outcome {
	c := call
	return &Outcome{Kind: KindToolCall, Proposal: &c}
}

// Service is the reasoning-service contract.
type Service interface {
	Complete(ctx context.Context, req Request) (*Outcome, error)
}

// Summarizer renders raw tool results as natural language by delegating to a
// reasoning Service. It satisfies catalog.Summarizer.
type Summarizer struct {
	svc Service
}

// NewSummarizer wraps svc as a catalog.Summarizer.
func NewSummarizer(svc Service) *Summarizer {
	return &Summarizer{svc: svc}
}

// Summarize implements catalog.Summarizer.
func (s *Summarizer) Summarize(ctx context.Context, rawResult, originalQuery, toolName string) (string, error) {
	prompt := fmt.Sprintf(
		"The user asked: %q. The %s tool returned this raw result:\n%s\n"+
			"Answer the user's question in one or two short spoken sentences. "+
			"Do not mention tools, JSON, or identifiers.",
		originalQuery, toolName, rawResult,
	)
	outcome, err := s.svc.Complete(ctx, Request{
		History: []session.Turn{session.UserTurn(prompt)},
	})
	if err != nil {
		return "", err
	}
	if outcome.Kind != KindText || outcome.Text == "" {
		return "", fmt.Errorf("summarization produced no text")
	}
	return outcome.Text, nil
}
