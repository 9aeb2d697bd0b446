// Package main runs parleyd, the conversation server for the parley voice
// assistant. It terminates the wire protocol over websockets and orchestrates
// reasoning, tool execution, and destructive-action confirmation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/parley-dev/parley/internal/catalog"
	"github.com/parley-dev/parley/internal/config"
	"github.com/parley-dev/parley/internal/logging"
	"github.com/parley-dev/parley/internal/orchestrator"
	"github.com/parley-dev/parley/internal/protocol"
	"github.com/parley-dev/parley/internal/reasoning"
	geminiprov "github.com/parley-dev/parley/internal/reasoning/gemini"
	openaiprov "github.com/parley-dev/parley/internal/reasoning/openai"
	"github.com/parley-dev/parley/internal/server"
	"github.com/parley-dev/parley/internal/session"
	"github.com/parley-dev/parley/internal/timelog"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "parleyd",
		Short:        "Conversation server for the parley voice assistant",
		Long:         "parleyd serves the parley wire protocol over a websocket endpoint,\ndriving an LLM reasoning loop with confirmation-gated destructive tools.",
		RunE:         runServer,
		SilenceUsage: true,
	}
	cmd.Flags().String("listen", "", "override the configured listen address")
	return cmd
}

func runServer(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		cfg.Server.ListenAddr = listen
	}

	logger, logCloser, err := logging.New(logging.Config{
		Level:   cfg.Logging.Level,
		Service: "parleyd",
		File:    cfg.Logging.File,
	})
	if err != nil {
		return err
	}
	if logCloser != nil {
		defer logCloser.Close()
	}
	slog.SetDefault(logger)

	store, err := timelog.Open(config.ExpandHome(cfg.Timelog.DataDir), logger)
	if err != nil {
		return fmt.Errorf("open timelog store: %w", err)
	}
	defer store.Close()

	svc, err := newReasoningService(ctx, cfg, logger)
	if err != nil {
		return err
	}

	cat := catalog.NewRegistry(reasoning.NewSummarizer(svc), timelog.Tools(store)...)

	registry := session.NewRegistry(session.RegistryOptions{
		HistoryLimit:   cfg.Session.HistoryLimit,
		SessionTimeout: cfg.SessionTimeout(),
		DefaultPersona: cfg.Session.DefaultPersona,
		Logger:         logger,
	})

	orch := orchestrator.New(orchestrator.Options{
		Reasoning:           svc,
		Catalog:             cat,
		Classifier:          orchestrator.NewReplyClassifier(svc, logger),
		MaxToolCallsPerTurn: cfg.Session.MaxToolCallsPerTurn,
		ConfirmationTimeout: cfg.ConfirmationTimeout(),
		Logger:              logger,
	})

	handler := protocol.NewHandler(protocol.HandlerOptions{
		Registry:  registry,
		Orch:      orch,
		Farewells: cfg.Session.Farewells,
		Logger:    logger,
	})

	srv := server.New(server.Options{
		Addr:     cfg.Server.ListenAddr,
		Handler:  handler,
		Registry: registry,
		Logger:   logger,
	})

	logger.Info("parleyd starting",
		"addr", cfg.Server.ListenAddr,
		"provider", cfg.Reasoning.Provider,
		"history_limit", cfg.Session.HistoryLimit)
	return srv.Run(ctx)
}

func newReasoningService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (reasoning.Service, error) {
	switch cfg.Reasoning.Provider {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
		}
		return openaiprov.NewWithAPIKey(apiKey, cfg.Reasoning.Model, logger), nil

	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is required")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return geminiprov.New(geminiprov.NewRealGeminiClient(client), cfg.Reasoning.Model, logger), nil

	default:
		return nil, fmt.Errorf("unknown reasoning provider %q", cfg.Reasoning.Provider)
	}
}
