package config

import (
	"fmt"
)

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.ListenAddr == "" {
		errs = append(errs, "server.listen_addr must be non-empty")
	}

	if c.Session.HistoryLimit < 1 {
		errs = append(errs, "session.history_limit must be >= 1")
	}
	if c.Session.MaxToolCallsPerTurn < 1 {
		errs = append(errs, "session.max_tool_calls_per_turn must be >= 1")
	}
	if c.Session.SessionTimeoutMinutes < 1 {
		errs = append(errs, "session.session_timeout_minutes must be >= 1")
	}
	if c.Session.ConfirmationTimeoutSeconds < 1 {
		errs = append(errs, "session.confirmation_timeout_seconds must be >= 1")
	}
	if c.Session.DefaultPersona == "" {
		errs = append(errs, "session.default_persona must be non-empty")
	}

	switch c.Reasoning.Provider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Sprintf("reasoning.provider %q is not supported (want openai or gemini)", c.Reasoning.Provider))
	}

	if c.Timelog.DataDir == "" {
		errs = append(errs, "timelog.data_dir must be non-empty")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
