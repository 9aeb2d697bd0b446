package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a controllable time source for expiry tests.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time            { return c.t }
func (c *fakeClock) Advance(d time.Duration)   { c.t = c.t.Add(d) }

func newTestSession(limit int, clock *fakeClock) *Session {
	return newSession("s-1", "assistant", limit, clock.Now)
}

func TestHistoryCap_OldestDroppedFirst(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	s := newTestSession(50, clock)

	for i := 1; i <= 55; i++ {
		s.AddUserTurn(fmt.Sprintf("message %d", i))
	}

	history := s.History()
	require.Len(t, history, 50)
	assert.Equal(t, "message 6", history[0].Text)
	assert.Equal(t, "message 55", history[49].Text)
}

func TestHistoryCap_AppliesToEveryMutator(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestSession(3, clock)

	s.AddUserTurn("u1")
	s.AddToolInvocation(ToolCall{ID: "c1", Name: "list_time_entries"})
	s.AddToolResult("c1", "no entries")
	s.AddAssistantText("nothing logged yet")

	history := s.History()
	require.Len(t, history, 3)
	assert.Equal(t, RoleAssistant, history[0].Role)
	require.NotNil(t, history[0].ToolCall)
	assert.Equal(t, "c1", history[0].ToolCall.ID)
	assert.Equal(t, RoleTool, history[1].Role)
	assert.Equal(t, "c1", history[1].CallID)
	assert.Equal(t, RoleAssistant, history[2].Role)
	assert.Nil(t, history[2].ToolCall)
}

func TestHistoryCap_NeverStrandsToolResult(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestSession(2, clock)

	s.AddToolInvocation(ToolCall{ID: "c1", Name: "sum_time"})
	s.AddToolResult("c1", "Total: 8 hours.")
	// Trimming evicts the invocation; the orphaned result must go with it.
	s.AddAssistantText("Eight hours in total.")

	history := s.History()
	require.Len(t, history, 1)
	assert.Equal(t, RoleAssistant, history[0].Role)
}

func TestHistoryCap_ToolTurnsAlwaysFollowTheirInvocation(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestSession(4, clock)

	for i := 1; i <= 6; i++ {
		id := fmt.Sprintf("c%d", i)
		s.AddUserTurn(fmt.Sprintf("request %d", i))
		s.AddToolInvocation(ToolCall{ID: id, Name: "list_time_entries"})
		s.AddToolResult(id, "ok")
	}

	history := s.History()
	assert.LessOrEqual(t, len(history), 4)
	for i, turn := range history {
		if turn.Role != RoleTool {
			continue
		}
		matched := false
		for _, prior := range history[:i] {
			if prior.Role == RoleAssistant && prior.ToolCall != nil && prior.ToolCall.ID == turn.CallID {
				matched = true
			}
		}
		assert.True(t, matched, "tool turn %s has no preceding invocation", turn.CallID)
	}
}

func TestTurnConstructors_ShapeInvariants(t *testing.T) {
	user := UserTurn("hello")
	assert.Equal(t, RoleUser, user.Role)
	assert.Nil(t, user.ToolCall)

	text := AssistantTextTurn("hi there")
	assert.Equal(t, RoleAssistant, text.Role)
	assert.Nil(t, text.ToolCall)

	call := AssistantToolCallTurn(ToolCall{ID: "c9", Name: "log_time"})
	assert.Equal(t, RoleAssistant, call.Role)
	require.NotNil(t, call.ToolCall)
	assert.Empty(t, call.Text)

	result := ToolResultTurn("c9", "done")
	assert.Equal(t, RoleTool, result.Role)
	assert.Equal(t, "c9", result.CallID)
}

func TestPendingExecution_SetAndClearAtomic(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	s := newTestSession(50, clock)

	assert.False(t, s.HasPendingConfirmation())
	assert.Nil(t, s.PendingExecution())

	s.SetPendingExecution(ToolCall{ID: "c1", Name: "log_time"}, "Shall I log that?")
	assert.True(t, s.HasPendingConfirmation())
	pending := s.PendingExecution()
	require.NotNil(t, pending)
	assert.Equal(t, clock.Now(), pending.RequestedAt)

	s.ClearPendingExecution()
	assert.False(t, s.HasPendingConfirmation())
	assert.Nil(t, s.PendingExecution())
}

func TestPendingExecution_SnapshotIsCopy(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	s := newTestSession(50, clock)
	s.SetPendingExecution(ToolCall{ID: "c1", Name: "log_time"}, "prompt")

	snap := s.PendingExecution()
	snap.Call.Name = "something_else"

	assert.Equal(t, "log_time", s.PendingExecution().Call.Name)
}

func TestExpirePendingIfStale(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	s := newTestSession(50, clock)
	s.SetPendingExecution(ToolCall{ID: "c1", Name: "log_time"}, "prompt")

	clock.Advance(time.Minute)
	assert.False(t, s.ExpirePendingIfStale(2*time.Minute))
	assert.True(t, s.HasPendingConfirmation())

	clock.Advance(2 * time.Minute) // requestedAt is now 3m old
	assert.True(t, s.ExpirePendingIfStale(2*time.Minute))
	assert.False(t, s.HasPendingConfirmation())

	// Nothing pending: no-op.
	assert.False(t, s.ExpirePendingIfStale(2*time.Minute))
}
