// Package catalog defines the callable-operation surface the orchestrator
// drives: tool descriptors with an authoritative destructive flag, the Tool
// interface concrete providers implement, and an in-process Catalog that
// routes execution and renders raw results for display.
package catalog

import (
	"context"
	"fmt"
)

// Descriptor describes one callable operation. The Destructive flag is
// authoritative: the orchestrator never infers mutation risk from the name.
type Descriptor struct {
	Name        string
	Description string
	Parameters  *Schema
	Destructive bool
}

// Tool represents a capability the assistant can use.
// Each tool must be stateless and safe for concurrent use.
type Tool interface {
	// Descriptor returns the tool's name, parameter schema, and
	// mutation classification.
	Descriptor() Descriptor

	// Execute runs the tool with the given arguments.
	// Args is a map of argument names to values, as provided by the LLM.
	Execute(ctx context.Context, args map[string]any) (string, error)
}

// Summarizer renders a raw tool result as natural language for the user.
// Implementations are best-effort; the catalog falls back to a deterministic
// rendering when the call fails.
type Summarizer interface {
	Summarize(ctx context.Context, rawResult, originalQuery, toolName string) (string, error)
}

// Catalog enumerates tools and executes them by name.
type Catalog interface {
	// List returns descriptors for every registered tool.
	List() []Descriptor

	// Lookup returns the descriptor for name.
	Lookup(name string) (Descriptor, bool)

	// Execute runs the named tool. The returned text is surfaced back into
	// the reasoning loop; an error means the tool itself failed.
	Execute(ctx context.Context, name string, args map[string]any) (string, error)

	// SummarizeForDisplay renders a raw result as human-facing text,
	// falling back deterministically when natural-language rendering fails.
	SummarizeForDisplay(ctx context.Context, rawResult, originalQuery, toolName string) string
}

const summaryFallbackLimit = 280

// Registry is the in-process Catalog implementation.
type Registry struct {
	tools      map[string]Tool
	order      []string
	summarizer Summarizer
}

// NewRegistry builds a Registry over the given tools. The summarizer may be
// nil, in which case the deterministic fallback is always used.
func NewRegistry(summarizer Summarizer, tools ...Tool) *Registry {
	r := &Registry{
		tools:      make(map[string]Tool, len(tools)),
		summarizer: summarizer,
	}
	for _, t := range tools {
		name := t.Descriptor().Name
		if _, exists := r.tools[name]; !exists {
			r.order = append(r.order, name)
		}
		r.tools[name] = t
	}
	return r
}

// List implements Catalog. Descriptors come back in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor())
	}
	return out
}

// Lookup implements Catalog.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	t, ok := r.tools[name]
	if !ok {
		return Descriptor{}, false
	}
	return t.Descriptor(), true
}

// Execute implements Catalog.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	result, err := t.Execute(ctx, args)
	toolExecutions.WithLabelValues(name).Inc()
	if err != nil {
		toolErrors.WithLabelValues(name).Inc()
	}
	return result, err
}

// SummarizeForDisplay implements Catalog.
func (r *Registry) SummarizeForDisplay(ctx context.Context, rawResult, originalQuery, toolName string) string {
	if r.summarizer != nil {
		if text, err := r.summarizer.Summarize(ctx, rawResult, originalQuery, toolName); err == nil && text != "" {
			return text
		}
	}
	return fallbackSummary(rawResult)
}

// fallbackSummary truncates a raw result to a speakable length.
func fallbackSummary(raw string) string {
	if raw == "" {
		return "Done."
	}
	if len(raw) <= summaryFallbackLimit {
		return raw
	}
	return raw[:summaryFallbackLimit] + "…"
}
