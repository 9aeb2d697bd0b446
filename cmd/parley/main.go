// Package main runs parley, a terminal chat client for a parleyd server.
// It speaks the same wire protocol a voice companion would, which makes it
// the quickest way to exercise a running server by hand.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "parley",
		Short:        "Terminal chat client for a parleyd server",
		RunE:         runChat,
		SilenceUsage: true,
	}
	cmd.Flags().String("server", "ws://localhost:8790/ws", "websocket URL of the parleyd server")
	cmd.Flags().String("session", "", "session id to join (default: a fresh random id)")
	cmd.Flags().String("persona", "", "persona override for this session")
	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	serverURL, _ := cmd.Flags().GetString("server")
	sessionID, _ := cmd.Flags().GetString("session")
	persona, _ := cmd.Flags().GetString("persona")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	c, err := dial(serverURL, sessionID, persona)
	if err != nil {
		return err
	}
	defer c.close()

	program := tea.NewProgram(newTUIModel(c), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
