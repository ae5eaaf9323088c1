// Command mat runs the Massive Action Tracker API and its maintenance tasks.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"actiontracker/internal/adapters/ai"
	"actiontracker/internal/adapters/email"
	web "actiontracker/internal/adapters/http"
	"actiontracker/internal/adapters/http/perf"
	"actiontracker/internal/adapters/storage"
	accountStore "actiontracker/internal/adapters/storage/account"
	avatarStore "actiontracker/internal/adapters/storage/avatar"
	contentStore "actiontracker/internal/adapters/storage/content"
	dayStore "actiontracker/internal/adapters/storage/dayrecord"
	hotLeadStore "actiontracker/internal/adapters/storage/hotlead"
	outboxStore "actiontracker/internal/adapters/storage/outbox"
	subscriptionStore "actiontracker/internal/adapters/storage/subscription"
	transactionStore "actiontracker/internal/adapters/storage/transaction"
	"actiontracker/internal/application/orchestrators"
	"actiontracker/internal/config"
	"actiontracker/internal/domain/outbox"
	"actiontracker/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "mat",
		Short:         "Massive Action Tracker",
		Long:          `Daily sales-activity tracking for reps and their managers.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", envOr("MAT_CONFIG", "mat.yaml"), "path to the YAML config file")

	cmd.AddCommand(serveCmd(&configPath))
	cmd.AddCommand(migrateCmd(&configPath))
	cmd.AddCommand(cleanupGoalsCmd(&configPath))
	cmd.AddCommand(remindCmd(&configPath))
	cmd.AddCommand(outboxCmd(&configPath))
	return cmd
}

// runtime is everything a command needs once config is loaded and the
// database is open and migrated.
type runtime struct {
	cfg       *config.Config
	raw       *sql.DB
	db        *storage.TimedDB
	stores    *web.Stores
	collector *perf.Collector
	logs      io.Closer
}

func open(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logs, err := logging.Setup(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("set up logging: %w", err)
	}

	raw, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpen)
	if err != nil {
		logs.Close()
		return nil, err
	}
	collector := perf.NewCollector(perf.DefaultRingSize)
	db := storage.NewTimedDB(raw, collector, storage.DialectFor(cfg.Database.Driver), config.Millis(cfg.Database.SlowQueryMS))
	if err := storage.Migrate(ctx, db); err != nil {
		raw.Close()
		logs.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &runtime{
		cfg:       cfg,
		raw:       raw,
		db:        db,
		stores:    newStores(db),
		collector: collector,
		logs:      logs,
	}, nil
}

func (rt *runtime) Close() {
	rt.raw.Close()
	rt.logs.Close()
}

func newStores(db storage.SQLDB) *web.Stores {
	return &web.Stores{
		AccountStore:      accountStore.NewSQLStore(db),
		DayStore:          dayStore.NewSQLStore(db),
		TransactionStore:  transactionStore.NewSQLStore(db),
		HotLeadStore:      hotLeadStore.NewSQLStore(db),
		AvatarStore:       avatarStore.NewSQLStore(db),
		ContentStore:      contentStore.NewSQLStore(db),
		SubscriptionStore: subscriptionStore.NewSQLStore(db),
		OutboxStore:       outboxStore.NewSQLStore(db),
	}
}

// sender returns Resend when a key is configured and a no-op sender otherwise.
func (rt *runtime) sender() email.Sender {
	if rt.cfg.Email.ResendKey != "" {
		return email.NewResendSender(rt.cfg.Email.ResendKey, rt.cfg.Email.From, rt.cfg.Email.ReplyTo)
	}
	return email.NewNoopSender()
}

func (rt *runtime) outboxProcessor() *orchestrators.OutboxProcessor {
	return orchestrators.NewOutboxProcessor(rt.stores.OutboxStore,
		map[string]orchestrators.ActionExecutor{
			outbox.ActionTypeEmail: &orchestrators.EmailExecutor{Sender: rt.sender(), From: rt.cfg.Email.From},
		},
		orchestrators.OutboxConfig{
			BaseDelay: config.Duration(rt.cfg.Outbox.BaseDelay, 30*time.Second),
			MaxDelay:  config.Duration(rt.cfg.Outbox.MaxDelay, time.Hour),
		})
}

// generator returns Gemini when an API key is configured and canned copy otherwise.
func (rt *runtime) generator(ctx context.Context) (ai.Generator, error) {
	if rt.cfg.AI.APIKey == "" {
		return ai.NewCannedGenerator(), nil
	}
	g, err := ai.NewGeminiGenerator(ctx, rt.cfg.AI.APIKey, rt.cfg.AI.Model, rt.cfg.AI.Temperature,
		config.Duration(rt.cfg.AI.Timeout, time.Minute))
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (rt *runtime) reminderDeps() orchestrators.QueueRemindersDeps {
	return orchestrators.QueueRemindersDeps{
		HotLeadStore:     rt.stores.HotLeadStore,
		AccountStore:     rt.stores.AccountStore,
		TransactionStore: rt.stores.TransactionStore,
		Outbox:           rt.stores.OutboxStore,
		Location:         rt.cfg.Location(),
		GenerateID:       newID,
		Now:              utcNow,
	}
}

func newID() string { return uuid.New().String() }

func utcNow() time.Time { return time.Now().UTC() }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
