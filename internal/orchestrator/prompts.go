package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/parley-dev/parley/internal/session"
)

// PromptFunc renders a human-readable confirmation prompt for one proposed
// tool call. Rendering is deterministic: no reasoning-service round trip.
type PromptFunc func(call session.ToolCall) string

// PromptRegistry maps tool names to confirmation-prompt templates, with a
// generic fallback for tools that never registered one. Adding a new
// destructive tool means registering a template here, not touching the loop.
type PromptRegistry struct {
	templates map[string]PromptFunc
}

// NewPromptRegistry creates a registry preloaded with the built-in
// timekeeping templates.
func NewPromptRegistry() *PromptRegistry {
	r := &PromptRegistry{templates: make(map[string]PromptFunc)}

	r.Register("log_time", func(call session.ToolCall) string {
		return fmt.Sprintf("You want me to log %v hours on %v%s. Shall I confirm that?",
			call.Args["hours"], call.Args["project"], datePhrase(call.Args["date"]))
	})
	r.Register("delete_time_entry", func(call session.ToolCall) string {
		return fmt.Sprintf("You want me to delete time entry %v. This cannot be undone. Please confirm.",
			call.Args["id"])
	})

	return r
}

// Register installs or replaces the template for a tool name.
func (r *PromptRegistry) Register(toolName string, fn PromptFunc) {
	r.templates[toolName] = fn
}

// Render produces the confirmation prompt for call, using the generic
// fallback for unrecognized tools.
func (r *PromptRegistry) Render(call session.ToolCall) string {
	if fn, ok := r.templates[call.Name]; ok {
		return fn(call)
	}
	return genericPrompt(call)
}

func genericPrompt(call session.ToolCall) string {
	args := formatArgs(call.Args)
	if args == "" {
		return fmt.Sprintf("This will run %s. Please confirm.", speakableName(call.Name))
	}
	return fmt.Sprintf("This will run %s with %s. Please confirm.", speakableName(call.Name), args)
}

// formatArgs renders an argument map deterministically, keys sorted.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %v", k, args[k]))
	}
	return strings.Join(parts, ", ")
}

func speakableName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

func datePhrase(date any) string {
	s, _ := date.(string)
	if s == "" {
		return ""
	}
	return " for " + s
}
