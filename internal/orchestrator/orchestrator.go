// Package orchestrator drives the reasoning loop: it turns an inbound user
// utterance into safe execution of external operations, gating destructive
// tools behind an explicit, time-boxed confirmation.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parley-dev/parley/internal/catalog"
	"github.com/parley-dev/parley/internal/reasoning"
	"github.com/parley-dev/parley/internal/session"
)

// Fixed user-facing texts. Internal failures always degrade to these; no
// stack traces, tool names, or raw identifiers reach a response.
const (
	apologyMessage            = "I'm sorry, I'm having trouble thinking right now. Please try again in a moment."
	fallbackMessage           = "I've done several things — anything else?"
	cancelledMessage          = "Cancelled. I won't do that."
	destructiveFailureMessage = "I'm sorry, that didn't work. Nothing was changed."
	goodbyeMessage            = "Goodbye!"
)

// Result is the outcome of handling one inbound message.
type Result struct {
	// Text is the user-facing answer.
	Text string

	// AwaitingConfirmation is set when Text is a confirmation prompt for a
	// parked destructive call.
	AwaitingConfirmation bool
}

// Options configures an Orchestrator.
type Options struct {
	Reasoning           reasoning.Service
	Catalog             catalog.Catalog
	Classifier          Classifier
	Prompts             *PromptRegistry
	MaxToolCallsPerTurn int
	ConfirmationTimeout time.Duration
	Logger              *slog.Logger
}

// Orchestrator owns all session mutation for message handling. It is safe
// for concurrent use across sessions.
type Orchestrator struct {
	reasoning    reasoning.Service
	catalog      catalog.Catalog
	classifier   Classifier
	prompts      *PromptRegistry
	maxToolCalls int
	confirmTTL   time.Duration
	logger       *slog.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Prompts == nil {
		opts.Prompts = NewPromptRegistry()
	}
	if opts.MaxToolCallsPerTurn <= 0 {
		opts.MaxToolCallsPerTurn = 5
	}
	if opts.ConfirmationTimeout <= 0 {
		opts.ConfirmationTimeout = 2 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		reasoning:    opts.Reasoning,
		catalog:      opts.Catalog,
		classifier:   opts.Classifier,
		prompts:      opts.Prompts,
		maxToolCalls: opts.MaxToolCallsPerTurn,
		confirmTTL:   opts.ConfirmationTimeout,
		logger:       opts.Logger,
	}
}

// HandleMessage processes one user utterance against sess and returns either
// a plain-text answer or a confirmation request for a destructive action.
func (o *Orchestrator) HandleMessage(ctx context.Context, sess *session.Session, text string) Result {
	sess.Touch()

	// A parked call that waited past its window is discarded as if the user
	// had never been asked; the message becomes a fresh request.
	if sess.ExpirePendingIfStale(o.confirmTTL) {
		o.logger.Info("pending confirmation timed out", "session_id", sess.ID())
	}

	if pending := sess.PendingExecution(); pending != nil {
		return o.handleConfirmationReply(ctx, sess, pending, text)
	}

	sess.AddUserTurn(text)
	return o.runReasoningLoop(ctx, sess)
}

// handleConfirmationReply routes a reply to a pending destructive request.
func (o *Orchestrator) handleConfirmationReply(ctx context.Context, sess *session.Session, pending *session.PendingExecution, text string) Result {
	verdict := o.classifier.Classify(ctx, pending.Prompt, text)
	o.logger.Info("confirmation reply classified",
		"session_id", sess.ID(), "tool", pending.Call.Name, "verdict", string(verdict))

	switch verdict {
	case VerdictConfirmed:
		sess.AddUserTurn(text)
		return o.executeConfirmed(ctx, sess, pending)

	case VerdictCancelled:
		sess.ClearPendingExecution()
		sess.AddUserTurn(text)
		sess.AddAssistantText(cancelledMessage)
		return Result{Text: cancelledMessage}

	default:
		// The user is effectively starting a revised request.
		sess.ClearPendingExecution()
		sess.AddUserTurn(text)
		return o.runReasoningLoop(ctx, sess)
	}
}

// executeConfirmed runs the exact previously-proposed call. Arguments are
// never re-derived from the confirming reply, and the pending execution is
// cleared whether the call succeeds or fails.
func (o *Orchestrator) executeConfirmed(ctx context.Context, sess *session.Session, pending *session.PendingExecution) Result {
	call := pending.Call
	sess.ClearPendingExecution()
	query := originalQuery(sess)

	result, err := o.catalog.Execute(ctx, call.Name, call.Args)
	if err != nil {
		o.logger.Error("confirmed tool execution failed",
			"session_id", sess.ID(), "tool", call.Name, "call_id", call.ID, "error", err)
		sess.AddAssistantText(destructiveFailureMessage)
		return Result{Text: destructiveFailureMessage}
	}

	sess.AddToolInvocation(call)
	sess.AddToolResult(call.ID, result)

	answer := o.catalog.SummarizeForDisplay(ctx, result, query, call.Name)
	sess.AddAssistantText(answer)
	return Result{Text: answer}
}

// runReasoningLoop is the bounded agent loop: consult the reasoning service,
// execute safe tools inline, park destructive ones behind confirmation, and
// stop on a text answer or when the call budget runs out.
func (o *Orchestrator) runReasoningLoop(ctx context.Context, sess *session.Session) Result {
	executed := 0

	for {
		if err := ctx.Err(); err != nil {
			return Result{Text: apologyMessage}
		}

		req := reasoning.Request{
			SystemPrompt: buildSystemPrompt(sess.Persona()),
			History:      sess.History(),
			Tools:        o.catalog.List(),
		}
		outcome, err := o.reasoning.Complete(ctx, req)
		if err != nil {
			o.logger.Error("reasoning service failed", "session_id", sess.ID(), "error", err)
			return Result{Text: apologyMessage}
		}

		if outcome.Kind == reasoning.KindText {
			sess.AddAssistantText(outcome.Text)
			return Result{Text: outcome.Text}
		}

		call := *outcome.Proposal
		desc, known := o.catalog.Lookup(call.Name)
		if !known {
			// Feed the miss back so the model can recover or apologize.
			o.logger.Warn("model proposed unknown tool", "session_id", sess.ID(), "tool", call.Name)
			sess.AddToolInvocation(call)
			sess.AddToolResult(call.ID, fmt.Sprintf("Error: unknown tool %q", call.Name))
			executed++
			if executed >= o.maxToolCalls {
				sess.AddAssistantText(fallbackMessage)
				return Result{Text: fallbackMessage}
			}
			continue
		}

		if desc.Destructive {
			prompt := o.prompts.Render(call)
			sess.SetPendingExecution(call, prompt)
			sess.AddAssistantText(prompt)
			o.logger.Info("destructive tool parked for confirmation",
				"session_id", sess.ID(), "tool", call.Name, "call_id", call.ID)
			return Result{Text: prompt, AwaitingConfirmation: true}
		}

		result, err := o.catalog.Execute(ctx, call.Name, call.Args)
		if err != nil {
			// Recoverable: the model sees the failure as the tool's result.
			o.logger.Warn("safe tool execution failed",
				"session_id", sess.ID(), "tool", call.Name, "call_id", call.ID, "error", err)
			result = fmt.Sprintf("Error: %v", err)
		}
		sess.AddToolInvocation(call)
		sess.AddToolResult(call.ID, result)
		executed++

		if executed >= o.maxToolCalls {
			o.logger.Info("tool call budget exhausted", "session_id", sess.ID(), "executed", executed)
			sess.AddAssistantText(fallbackMessage)
			return Result{Text: fallbackMessage}
		}
	}
}

// Goodbye returns the fixed end-of-conversation acknowledgement.
func Goodbye() string {
	return goodbyeMessage
}

// originalQuery recovers the user request that led to a confirmed call, for
// result summarization. The most recent user turn is the confirming reply
// itself, so the scan passes over it to the user turn before it, falling back
// to the reply when no earlier user turn survives the history cap.
func originalQuery(sess *session.Session) string {
	history := sess.History()
	var reply string
	seenReply := false
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role != session.RoleUser {
			continue
		}
		if !seenReply {
			reply = history[i].Text
			seenReply = true
			continue
		}
		return history[i].Text
	}
	return reply
}

// buildSystemPrompt is the fixed preamble: persona plus formatting rules for
// spoken responses.
func buildSystemPrompt(persona string) string {
	return fmt.Sprintf(
		"You are %s, a voice assistant. Reply in one or two short spoken "+
			"sentences. Never mention tools, JSON, or internal identifiers. "+
			"Use the provided tools when the user asks about or changes their data.",
		persona,
	)
}
