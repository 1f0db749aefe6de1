package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/optica-admin/pkg/logger"
)

// Pruner deletes processed outbox rows. repository.OutboxRepository implements it.
type Pruner interface {
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

type CleanupConfig struct {
	Retention time.Duration `envconfig:"OUTBOX_RETENTION" default:"168h"`
	Interval  time.Duration `envconfig:"OUTBOX_CLEANUP_INTERVAL" default:"1h"`
}

// OutboxCleanupWorker keeps the outbox table from growing without bound.
type OutboxCleanupWorker struct {
	repo   Pruner
	config CleanupConfig
	logger *logger.Logger
	now    func() time.Time
}

func NewOutboxCleanupWorker(repo Pruner, config CleanupConfig, logger *logger.Logger) *OutboxCleanupWorker {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &OutboxCleanupWorker{
		repo:   repo,
		config: config,
		logger: logger.With("outbox-cleanup"),
		now:    time.Now,
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Cleanup(ctx); err != nil {
				w.logger.Error(err, "Failed to clean up outbox events")
			}
		}
	}
}

// Cleanup removes events processed before now minus the retention.
func (w *OutboxCleanupWorker) Cleanup(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.config.Retention)

	rows, err := w.repo.DeleteProcessedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if rows > 0 {
		w.logger.Info("Cleaned up outbox events", "rows", rows, "cutoff", cutoff)
	}
	return rows, nil
}
