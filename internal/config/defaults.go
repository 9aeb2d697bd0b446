package config

import "time"

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Server    ServerConfig    `json:"server"`
	Session   SessionConfig   `json:"session"`
	Reasoning ReasoningConfig `json:"reasoning"`
	Timelog   TimelogConfig   `json:"timelog"`
	Logging   LoggingConfig   `json:"logging"`
}

type ServerConfig struct {
	// ListenAddr is the host:port the HTTP/WebSocket server binds to.
	ListenAddr string `json:"listen_addr"` // Default: ":8790"
}

type SessionConfig struct {
	// HistoryLimit caps the number of turns kept per session (FIFO eviction).
	HistoryLimit int `json:"history_limit"` // Default: 50

	// MaxToolCallsPerTurn bounds safe-tool executions within one reasoning loop.
	MaxToolCallsPerTurn int `json:"max_tool_calls_per_turn"` // Default: 5

	// SessionTimeoutMinutes is the inactivity window before a session is
	// lazily discarded on next lookup.
	SessionTimeoutMinutes int `json:"session_timeout_minutes"` // Default: 240 (4h)

	// ConfirmationTimeoutSeconds bounds how long a parked destructive call
	// waits for a yes/no before it is lazily discarded.
	ConfirmationTimeoutSeconds int `json:"confirmation_timeout_seconds"` // Default: 120

	// DefaultPersona names the persona applied to sessions that never set one.
	DefaultPersona string `json:"default_persona"` // Default: "assistant"

	// Farewells are user utterances that end the session outright.
	Farewells []string `json:"farewells"` // Default: ["goodbye", "end session"]
}

type ReasoningConfig struct {
	// Provider selects the reasoning backend: "openai" or "gemini".
	Provider string `json:"provider"` // Default: "openai"

	// Model overrides the provider's default model when non-empty.
	Model string `json:"model"`
}

type TimelogConfig struct {
	// DataDir is the BadgerDB directory for the timekeeping store.
	// Supports a leading "~" for the user home directory.
	DataDir string `json:"data_dir"` // Default: "~/.local/share/parley"
}

type LoggingConfig struct {
	Level string `json:"level"` // Default: "info"
	File  string `json:"file"`  // Default: "" (stderr only)
}

// SessionTimeout returns the session inactivity window as a duration.
func (c *Config) SessionTimeout() time.Duration {
	return time.Duration(c.Session.SessionTimeoutMinutes) * time.Minute
}

// ConfirmationTimeout returns the pending-confirmation window as a duration.
func (c *Config) ConfirmationTimeout() time.Duration {
	return time.Duration(c.Session.ConfirmationTimeoutSeconds) * time.Second
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr: ":8790",
		},
		Session: SessionConfig{
			HistoryLimit:               50,
			MaxToolCallsPerTurn:        5,
			SessionTimeoutMinutes:      240,
			ConfirmationTimeoutSeconds: 120,
			DefaultPersona:             "assistant",
			Farewells:                  []string{"goodbye", "end session"},
		},
		Reasoning: ReasoningConfig{
			Provider: "openai",
		},
		Timelog: TimelogConfig{
			DataDir: "~/.local/share/parley",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
