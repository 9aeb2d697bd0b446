package session

import (
	"log/slog"
	"sync"
	"time"
)

// Registry is a keyed store of sessions shared by all connection handlers.
// Sessions are created on first reference and discarded lazily: expiry is
// evaluated at lookup time, never by a background timer, so memory for an
// abandoned session is reclaimed on its next access or process restart.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	historyLimit   int
	timeout        time.Duration
	defaultPersona string
	now            func() time.Time
	logger         *slog.Logger
}

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	HistoryLimit   int
	SessionTimeout time.Duration
	DefaultPersona string

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time

	Logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Registry{
		sessions:       make(map[string]*Session),
		historyLimit:   opts.HistoryLimit,
		timeout:        opts.SessionTimeout,
		defaultPersona: opts.DefaultPersona,
		now:            opts.Now,
		logger:         opts.Logger,
	}
}

// GetOrCreate returns the session for id, constructing a fresh one when the
// id is unknown or the existing session has passed its inactivity timeout.
// The second result reports whether a new session was created.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[id]; ok {
		if !s.expired(r.timeout) {
			return s, false
		}
		r.logger.Info("discarding expired session", "session_id", id)
		delete(r.sessions, id)
	}

	s := newSession(id, r.defaultPersona, r.historyLimit, r.now)
	r.sessions[id] = s
	r.logger.Info("session created", "session_id", id)
	return s, true
}

// End removes the session unconditionally.
func (r *Registry) End(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; ok {
		delete(r.sessions, id)
		r.logger.Info("session ended", "session_id", id)
	}
}

// Len returns the number of resident sessions, including any whose expiry has
// not been observed yet.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
