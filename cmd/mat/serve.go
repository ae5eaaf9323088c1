package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	web "actiontracker/internal/adapters/http"
	"actiontracker/internal/adapters/storage"
	"actiontracker/internal/application/orchestrators"
	"actiontracker/internal/config"
	"actiontracker/internal/domain/subscription"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with the outbox and reminder workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, *configPath)
		},
	}
}

func serve(ctx context.Context, configPath string) error {
	rt, err := open(ctx, configPath)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.cfg

	if err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.CreateAccountDeps{
		AccountStore:      rt.stores.AccountStore,
		SubscriptionStore: rt.stores.SubscriptionStore,
		GenerateID:        newID,
		Now:               utcNow,
	}, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	if cfg.Email.ResendKey == "" {
		if cfg.IsProduction() {
			slog.Warn("email_disabled", "reason", "MAT_RESEND_KEY not set")
		} else {
			slog.Info("email_noop", "hint", "set MAT_RESEND_KEY for real delivery")
		}
	}
	generator, err := rt.generator(ctx)
	if err != nil {
		return fmt.Errorf("ai generator: %w", err)
	}

	processor := rt.outboxProcessor()
	// entries left pending by a crash are still due, so one pass reconciles them
	if stats, err := processor.ProcessPending(ctx); err != nil {
		slog.Error("outbox_startup_failed", "error", err)
	} else {
		slog.Info("outbox_startup", "processed", stats.Processed, "succeeded", stats.Succeeded, "failed", stats.Failed)
	}

	stopWorkers := make(chan struct{})
	outboxDone := orchestrators.StartBackgroundWorker(config.Duration(cfg.Outbox.Interval, time.Minute), stopWorkers, processor.Job())
	remindersDone := orchestrators.StartBackgroundWorker(config.Duration(cfg.Outbox.ReminderInterval, time.Hour), stopWorkers,
		orchestrators.BackgroundJob{Name: "reminders", Run: func(ctx context.Context) error {
			_, err := orchestrators.ExecuteQueueFollowUpReminders(ctx, orchestrators.QueueRemindersInput{}, rt.reminderDeps())
			return err
		}})
	defer func() {
		close(stopWorkers)
		<-outboxDone
		<-remindersDone
	}()

	key, err := csrfKey(cfg)
	if err != nil {
		return err
	}
	server := web.NewServer(rt.stores, web.Services{
		Generator: generator,
		Outbox:    processor,
		Collector: rt.collector,
		DB:        rt.db,
	}, web.Options{
		CSRFKey:        key,
		TrustedOrigins: cfg.Server.TrustedOrigins,
		SecureCookies:  cfg.Server.SecureCookies,
		RateLimit:      cfg.Server.RateLimit,
		SlowRequest:    config.Millis(cfg.Server.SlowRequestMS),
		WebhookSecret:  cfg.Webhook.Secret,
		Location:       cfg.Location(),
		Cadence:        cfg.Cadence,
		Limits:         subscription.Limits(cfg.Plans),
	})
	defer server.Close()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// generation calls can run up to the AI timeout
		WriteTimeout: config.Duration(cfg.AI.Timeout, time.Minute) + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_starting", "version", version, "addr", cfg.Server.Addr, "env", cfg.Env,
			"driver", cfg.Database.Driver, "schema", storage.LatestSchemaVersion())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// csrfKey returns the configured key, or a per-process key outside production.
// Sessions live in memory, so a fresh key on restart loses nothing.
func csrfKey(cfg *config.Config) ([]byte, error) {
	if cfg.Server.CSRFKey != "" {
		return cfg.CSRFKeyBytes()
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate csrf key: %w", err)
	}
	return key, nil
}
