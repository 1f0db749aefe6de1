package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
)

// StatusUpdate is the outcome recorded for one claimed event.
type StatusUpdate struct {
	Status  model.OutboxStatus
	Error   *string
	RetryAt *time.Time
}

// OutboxStore hands out due events under a lock. fn returns the outcome of
// each event; the store writes them before releasing the lock.
type OutboxStore interface {
	Claim(ctx context.Context, limit int, fn func(events []*model.OutboxEvent) map[uuid.UUID]StatusUpdate) error
}

type repositoryStore struct {
	repo repository.OutboxRepository
}

// NewOutboxStore claims events through a transaction on repo.
func NewOutboxStore(repo repository.OutboxRepository) OutboxStore {
	return &repositoryStore{repo: repo}
}

func (s *repositoryStore) Claim(ctx context.Context, limit int, fn func([]*model.OutboxEvent) map[uuid.UUID]StatusUpdate) error {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	events, err := s.repo.GetPendingEventsWithLock(ctx, tx, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return tx.Commit()
	}

	for id, u := range fn(events) {
		if err := s.repo.UpdateStatusTx(ctx, tx, id, u.Status, u.Error, u.RetryAt); err != nil {
			return fmt.Errorf("update event %s: %w", id, err)
		}
	}
	return tx.Commit()
}
