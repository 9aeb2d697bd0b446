package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/parley-dev/parley/internal/reasoning"
)

func TestClassifyHeuristically(t *testing.T) {
	tests := []struct {
		reply   string
		want    Verdict
		decided bool
	}{
		{"yes", VerdictConfirmed, true},
		{"Yes!", VerdictConfirmed, true},
		{"  sounds good  ", VerdictConfirmed, true},
		{"go ahead", VerdictConfirmed, true},
		{"no", VerdictCancelled, true},
		{"never mind.", VerdictCancelled, true},
		{"abort", VerdictCancelled, true},
		{"", VerdictModification, true},
		{"   ", VerdictModification, true},
		{"actually make it 6 hours", "", false},
		{"yes but on PROJECT-X instead", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.reply, func(t *testing.T) {
			got, decided := classifyHeuristically(tc.reply)
			assert.Equal(t, tc.decided, decided)
			if decided {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestClassify_DelegatesAmbiguousReplies(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   Verdict
	}{
		{"confirmed", "CONFIRMED", VerdictConfirmed},
		{"confirmed with prose", "The user's answer is CONFIRMED.", VerdictConfirmed},
		{"cancelled", "cancelled", VerdictCancelled},
		{"modification", "MODIFICATION", VerdictModification},
		{"gibberish defaults safe", "perhaps?", VerdictModification},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &scriptedReasoning{outcomes: []*reasoning.Outcome{
				reasoning.TextOutcome(tc.answer),
			}}
			c := NewReplyClassifier(svc, nil)

			got := c.Classify(context.Background(), "Shall I log 8 hours?", "hmm, I suppose that works")

			assert.Equal(t, tc.want, got)
			assert.Equal(t, 1, svc.calls)
		})
	}
}

func TestClassify_UnambiguousRepliesNeverHitTheService(t *testing.T) {
	svc := &scriptedReasoning{}
	c := NewReplyClassifier(svc, nil)

	c.Classify(context.Background(), "Shall I?", "yes")
	c.Classify(context.Background(), "Shall I?", "nope")

	assert.Equal(t, 0, svc.calls)
}

func TestClassify_DelegateFailureDefaultsToModification(t *testing.T) {
	svc := &scriptedReasoning{err: errors.New("timeout")}
	c := NewReplyClassifier(svc, nil)

	got := c.Classify(context.Background(), "Shall I?", "well, about that")

	assert.Equal(t, VerdictModification, got)
}

func TestClassify_NilServiceDefaultsToModification(t *testing.T) {
	c := NewReplyClassifier(nil, nil)

	got := c.Classify(context.Background(), "Shall I?", "let me think about it")

	assert.Equal(t, VerdictModification, got)
}
