// Package session holds per-conversation state: bounded turn history, the
// optional parked destructive call awaiting confirmation, and activity
// timestamps, plus the keyed registry that owns session lifecycle.
package session

import (
	"sync"
	"time"
)

// PendingExecution is a destructive tool call that has been proposed but not
// yet executed. It exists only between the moment the call is proposed and the
// moment it is confirmed, cancelled, superseded, or times out.
type PendingExecution struct {
	Call        ToolCall
	Prompt      string
	RequestedAt time.Time
}

// Session is the state of one conversation. All mutation goes through its
// methods; each session carries its own lock so two racing messages for the
// same id cannot corrupt history or the pending execution.
type Session struct {
	id string

	mu           sync.Mutex
	persona      string
	lastActivity time.Time
	history      []Turn
	historyLimit int
	pending      *PendingExecution

	now func() time.Time
}

// newSession is called by the Registry only.
func newSession(id, persona string, historyLimit int, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{
		id:           id,
		persona:      persona,
		lastActivity: now(),
		historyLimit: historyLimit,
		now:          now,
	}
}

// ID returns the opaque session id, stable for the conversation's lifetime.
func (s *Session) ID() string { return s.id }

// Persona returns the persona reference for this session.
func (s *Session) Persona() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persona
}

// SetPersona overrides the session persona for the rest of the conversation.
func (s *Session) SetPersona(persona string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persona = persona
}

// Touch updates the activity timestamp. Called on every successful inbound
// message.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActivity = s.now()
}

// LastActivity returns the time of the most recent Touch.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// expired reports whether the session has been idle longer than timeout.
func (s *Session) expired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now().Sub(s.lastActivity) > timeout
}

// AddUserTurn appends a user turn.
func (s *Session) AddUserTurn(text string) {
	s.append(UserTurn(text))
}

// AddAssistantText appends an assistant turn carrying a plain-text reply.
func (s *Session) AddAssistantText(text string) {
	s.append(AssistantTextTurn(text))
}

// AddToolInvocation appends an assistant turn carrying a tool invocation.
func (s *Session) AddToolInvocation(call ToolCall) {
	s.append(AssistantToolCallTurn(call))
}

// AddToolResult appends a tool turn carrying an execution result.
func (s *Session) AddToolResult(callID, result string) {
	s.append(ToolResultTurn(callID, result))
}

func (s *Session) append(t Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, t)
	if over := len(s.history) - s.historyLimit; over > 0 {
		// A tool result whose invocation was just evicted must go with it;
		// every surviving tool turn needs its preceding assistant invocation.
		for over < len(s.history) && s.history[over].Role == RoleTool {
			over++
		}
		s.history = append(s.history[:0:0], s.history[over:]...)
	}
}

// History returns a copy of the conversation history in insertion order.
func (s *Session) History() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// HistoryLen returns the current number of turns.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.history)
}

// SetPendingExecution parks a destructive tool call awaiting confirmation,
// stamping RequestedAt with the current time. Any previously pending call is
// superseded.
func (s *Session) SetPendingExecution(call ToolCall, prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = &PendingExecution{
		Call:        call,
		Prompt:      prompt,
		RequestedAt: s.now(),
	}
}

// ClearPendingExecution discards the parked call, if any.
func (s *Session) ClearPendingExecution() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
}

// PendingExecution returns a snapshot of the parked call, or nil.
func (s *Session) PendingExecution() *PendingExecution {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return nil
	}
	p := *s.pending
	return &p
}

// HasPendingConfirmation reports whether a destructive call is parked.
func (s *Session) HasPendingConfirmation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// ExpirePendingIfStale discards the parked call when it has been waiting
// longer than timeout, and reports whether it did so. Checked lazily on the
// next inbound message; there is no timer.
func (s *Session) ExpirePendingIfStale(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return false
	}
	if s.now().Sub(s.pending.RequestedAt) > timeout {
		s.pending = nil
		return true
	}
	return false
}
