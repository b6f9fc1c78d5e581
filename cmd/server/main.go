package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"veritas-backend/internal/apierr"
	"veritas-backend/internal/config"
	"veritas-backend/internal/handlers"
	"veritas-backend/internal/logger"
	"veritas-backend/internal/metrics"
	"veritas-backend/internal/persona"
	"veritas-backend/internal/provider"
	"veritas-backend/internal/router"
	"veritas-backend/internal/services"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type serveFlags struct {
	port    string
	persona string
	debug   bool
}

func newRootCmd() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:          "veritas-server",
		Short:        "Chat relay in front of an LLM completion API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = flags.port
			}
			if cmd.Flags().Changed("persona") {
				cfg.Persona = flags.persona
			}
			if cmd.Flags().Changed("debug") {
				cfg.Debug = flags.debug
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&flags.port, "port", "p", "", "Port to listen on (overrides PORT)")
	cmd.Flags().StringVar(&flags.persona, "persona", "", "Built-in persona name (overrides PERSONA)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Enable debug logging (overrides DEBUG)")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.New(cfg.Debug, cfg.IsProduction())
	defer log.Sync()

	log.Info("starting veritas backend",
		zap.String("env", cfg.Env),
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
	)

	// ──── Persona ────
	var p persona.Config
	var err error
	if cfg.PersonaFile != "" {
		p, err = persona.LoadFile(cfg.PersonaFile)
	} else {
		p, err = persona.Lookup(cfg.Persona)
	}
	if err != nil {
		return fmt.Errorf("persona: %w", err)
	}
	log.Info("✓ persona selected", zap.String("persona", p.Name), zap.Int("seed_messages", len(p.Seed)))

	// ──── Completion provider ────
	var completer provider.Completer
	switch cfg.Provider {
	case config.ProviderGemini:
		gemini, err := provider.NewGemini(ctx, cfg.GeminiAPIKey, log)
		if err != nil {
			return err
		}
		defer gemini.Close()
		completer = gemini
	default:
		completer = provider.NewOpenAI(provider.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.ProviderTimeout,
		}, log)
	}
	log.Info("✓ completion provider initialized", zap.String("provider", completer.Name()))

	// ──── Error table ────
	table, err := apierr.NewTable(apierr.Defaults()...)
	if err != nil {
		return err
	}
	if cfg.IsProduction() {
		table = table.Redacted()
	}

	// ──── Services & handlers ────
	collector := metrics.New()
	chatService := services.NewChatService(completer, p, cfg.Model, log, collector)
	trialService := services.NewTrialService(chatService, services.DefaultProbes, cfg.ProviderConcurrency, log, collector)
	chatHandler := handlers.NewChatHandler(chatService, trialService)
	boundary := apierr.NewBoundary(table, log, collector)

	opts := router.Options{Metrics: collector}
	if cfg.CORSEnabled {
		opts.FrontendURL = cfg.FrontendURL
	}
	r, err := router.New(log, boundary, chatHandler, opts)
	if err != nil {
		return err
	}

	// No WriteTimeout: the provider call has no deadline of its own.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("✓ ready", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
