package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"actiontracker/internal/adapters/email"
	domain "actiontracker/internal/domain/outbox"
)

// OutboxStoreForProcessor defines the store interface needed by OutboxProcessor.
type OutboxStoreForProcessor interface {
	GetByID(ctx context.Context, id string) (domain.Entry, error)
	Save(ctx context.Context, e domain.Entry) error
	ListDue(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error)
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action for the entry.
	// Returns the provider's ID for the delivered action.
	Execute(ctx context.Context, entry domain.Entry) (string, error)
}

// OutboxConfig tunes retry behaviour.
type OutboxConfig struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	BatchSize int
	Now       func() time.Time
}

// OutboxProcessor delivers queued side effects with retries.
type OutboxProcessor struct {
	store     OutboxStoreForProcessor
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
	now       func() time.Time
}

// NewOutboxProcessor creates a new outbox processor. Zero config values take defaults.
func NewOutboxProcessor(store OutboxStoreForProcessor, executors map[string]ActionExecutor, cfg OutboxConfig) *OutboxProcessor {
	p := &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: cfg.BaseDelay,
		maxDelay:  cfg.MaxDelay,
		batchSize: cfg.BatchSize,
		now:       cfg.Now,
	}
	if p.baseDelay <= 0 {
		p.baseDelay = 30 * time.Second
	}
	if p.maxDelay <= 0 {
		p.maxDelay = time.Hour
	}
	if p.batchSize <= 0 {
		p.batchSize = 25
	}
	if p.now == nil {
		p.now = func() time.Time { return time.Now().UTC() }
	}
	return p
}

// ProcessStats counts the outcome of one ProcessPending pass.
type ProcessStats struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ProcessPending attempts every due entry once.
// It also serves as the reconciliation pass at startup: entries left pending
// by a crash are picked up because they are still due.
// PRE: Context is valid
// POST: attempted entries are saved with their new status
func (p *OutboxProcessor) ProcessPending(ctx context.Context) (ProcessStats, error) {
	var stats ProcessStats
	entries, err := p.store.ListDue(ctx, p.now(), p.batchSize)
	if err != nil {
		return stats, fmt.Errorf("list due outbox entries: %w", err)
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		stats.Processed++
		entry, err := p.attempt(ctx, entry)
		if entry.Status == domain.StatusDone {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
		if err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID, "action_type", entry.ActionType, "error", err.Error())
		}
	}
	if stats.Processed > 0 {
		slog.Info("outbox_processed", "processed", stats.Processed, "succeeded", stats.Succeeded, "failed", stats.Failed)
	}
	return stats, nil
}

// attempt runs the executor once and saves the outcome.
func (p *OutboxProcessor) attempt(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	now := p.now()
	entry.MarkAttempt(now)

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType), now, p.baseDelay, p.maxDelay)
		return entry, p.store.Save(ctx, entry)
	}

	externalID, err := executor.Execute(ctx, entry)
	if err != nil {
		entry.MarkFailed(err, now, p.baseDelay, p.maxDelay)
		slog.Warn("outbox_action_failed", "entry_id", entry.ID, "attempt", entry.Attempts, "status", entry.Status, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID, "action_type", entry.ActionType, "external_id", externalID)
	}
	return entry, p.store.Save(ctx, entry)
}

// ProcessSingle requeues one entry with a fresh set of attempts and tries it now (admin retry).
// PRE: entryID is non-empty; entry is not done or abandoned
// POST: Entry is processed, status updated
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if err := entry.Requeue(p.now()); err != nil {
		return entry, err
	}
	entry, err = p.attempt(ctx, entry)
	if err != nil {
		return entry, fmt.Errorf("save outbox entry: %w", err)
	}
	slog.Info("outbox_manual_retry", "entry_id", entry.ID, "status", entry.Status)
	return entry, nil
}

// AbandonEntry marks an entry as abandoned by admin.
// PRE: entryID is non-empty
// POST: Entry status set to abandoned
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) (domain.Entry, error) {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return domain.Entry{}, err
	}
	if entry.Status == domain.StatusDone {
		return entry, domain.ErrNotRetryable
	}
	entry.MarkAbandoned()
	if err := p.store.Save(ctx, entry); err != nil {
		return entry, fmt.Errorf("save outbox entry: %w", err)
	}
	slog.Info("outbox_abandoned", "entry_id", entry.ID)
	return entry, nil
}

// Job wraps ProcessPending for StartBackgroundWorker.
func (p *OutboxProcessor) Job() BackgroundJob {
	return BackgroundJob{Name: "outbox", Run: func(ctx context.Context) error {
		_, err := p.ProcessPending(ctx)
		return err
	}}
}

// --- Email Executor ---

// EmailExecutor renders an EmailPayload and hands it to the sender.
type EmailExecutor struct {
	Sender email.Sender
	From   string
}

// Execute sends the email described by the entry payload.
// PRE: entry payload decodes as domain.EmailPayload
// POST: email sent via configured sender, returns message ID
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, entry domain.Entry) (string, error) {
	p, err := entry.DecodeEmail()
	if err != nil {
		return "", fmt.Errorf("decode email payload: %w", err)
	}
	req, err := email.Render(p.To, p.Subject, p.Markdown)
	if err != nil {
		return "", err
	}
	req.From = e.From
	res, err := e.Sender.Send(ctx, req)
	if err != nil {
		return "", err
	}
	return res.MessageID, nil
}

// --- Background Worker ---

// BackgroundJob is one task run on every worker tick.
type BackgroundJob struct {
	Name string
	Run  func(ctx context.Context) error
}

// StartBackgroundWorker runs jobs on every tick of interval until stopCh is closed.
// The returned channel is closed once the goroutine has exited.
// PRE: interval > 0
// POST: Worker runs until stopCh is closed
func StartBackgroundWorker(interval time.Duration, stopCh <-chan struct{}, jobs ...BackgroundJob) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				for _, job := range jobs {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
					if err := job.Run(ctx); err != nil {
						slog.Error("background_job_failed", "job", job.Name, "error", err.Error())
					}
					cancel()
				}
			case <-stopCh:
				slog.Info("background_worker_stopped")
				return
			}
		}
	}()
	return done
}
