package orchestrator

import (
	"context"
	"log/slog"
	"strings"

	"github.com/parley-dev/parley/internal/reasoning"
	"github.com/parley-dev/parley/internal/session"
)

// Verdict is the outcome of classifying a user's reply to a pending
// destructive request.
type Verdict string

const (
	VerdictConfirmed    Verdict = "confirmed"
	VerdictCancelled    Verdict = "cancelled"
	VerdictModification Verdict = "modification"
)

// Classifier decides what a free-text reply means for a pending destructive
// request. Implementations have no side effects; the orchestrator performs
// all state mutation.
type Classifier interface {
	Classify(ctx context.Context, pendingPrompt, userReply string) Verdict
}

// ReplyClassifier resolves unambiguous replies with local heuristics and
// delegates the rest to the reasoning service. Whenever the delegate fails or
// its answer is unparseable, the verdict is Modification: re-engage normal
// reasoning rather than silently executing or silently dropping the request.
type ReplyClassifier struct {
	svc    reasoning.Service
	logger *slog.Logger
}

// NewReplyClassifier builds a classifier over svc. A nil svc means heuristics
// only, with Modification for anything unclear.
func NewReplyClassifier(svc reasoning.Service, logger *slog.Logger) *ReplyClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplyClassifier{svc: svc, logger: logger}
}

// Classify implements Classifier.
func (c *ReplyClassifier) Classify(ctx context.Context, pendingPrompt, userReply string) Verdict {
	if v, ok := classifyHeuristically(userReply); ok {
		return v
	}
	if c.svc == nil {
		return VerdictModification
	}

	prompt := "The assistant asked the user: " + pendingPrompt + "\n" +
		"The user replied: " + userReply + "\n" +
		"Did the user confirm the action, cancel it, or ask for something different? " +
		"Answer with exactly one word: CONFIRMED, CANCELLED, or MODIFICATION."

	outcome, err := c.svc.Complete(ctx, reasoning.Request{
		History: []session.Turn{session.UserTurn(prompt)},
	})
	if err != nil {
		c.logger.Warn("confirmation classification failed, defaulting to modification", "error", err)
		return VerdictModification
	}
	if outcome.Kind != reasoning.KindText {
		return VerdictModification
	}

	switch {
	case strings.Contains(strings.ToUpper(outcome.Text), "CONFIRMED"):
		return VerdictConfirmed
	case strings.Contains(strings.ToUpper(outcome.Text), "CANCELLED"):
		return VerdictCancelled
	default:
		return VerdictModification
	}
}

var confirmReplies = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "yup": true,
	"sure": true, "ok": true, "okay": true, "confirm": true, "confirmed": true,
	"do it": true, "go ahead": true, "please do": true, "affirmative": true,
	"yes please": true, "sounds good": true,
}

var cancelReplies = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true,
	"cancel": true, "stop": true, "don't": true, "do not": true,
	"never mind": true, "nevermind": true, "forget it": true, "abort": true,
	"no thanks": true, "no thank you": true,
}

// classifyHeuristically resolves short, unambiguous replies locally. Longer
// or unlisted replies are left to the delegate.
func classifyHeuristically(reply string) (Verdict, bool) {
	normalized := strings.ToLower(strings.TrimSpace(reply))
	normalized = strings.Trim(normalized, ".,!?")
	if normalized == "" {
		return VerdictModification, true
	}
	if confirmReplies[normalized] {
		return VerdictConfirmed, true
	}
	if cancelReplies[normalized] {
		return VerdictCancelled, true
	}
	return "", false
}
