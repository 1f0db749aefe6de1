package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/pkg/collection"
	"github.com/jwalitptl/optica-admin/pkg/messaging"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db     *sqlx.DB
	outbox *outboxRepository
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db, outbox: &outboxRepository{db: db}}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// list loads one page of spec into dest and returns the total row count.
// A page past the end is clamped to the last page.
func (r *BaseRepository) list(ctx context.Context, dest interface{}, spec ListSpec, q collection.Query) (int, error) {
	lq := spec.Build(q)

	var total int
	if err := r.db.GetContext(ctx, &total, lq.CountSQL, lq.CountArgs...); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	if last := collection.LastPage(total, q.PerPage); q.Page > last {
		q.Page = last
		lq = spec.Build(q)
	}
	if err := r.db.SelectContext(ctx, dest, lq.SQL, lq.Args...); err != nil {
		return 0, fmt.Errorf("failed to list rows: %w", err)
	}
	return total, nil
}

// emit writes the outbox event for a mutation inside tx.
func (r *BaseRepository) emit(ctx context.Context, tx *sqlx.Tx, kind, action string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return r.outbox.CreateTx(ctx, tx, &model.OutboxEvent{
		EventType: messaging.EventType(kind, action),
		Payload:   body,
	})
}

// deleteByID removes one row and emits the delete event.
func (r *BaseRepository) deleteByID(ctx context.Context, table, entity string, id int64) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errNoRows
		}
		return r.emit(ctx, tx, table, "delete", model.EntityPayload{ID: id})
	})
	return mapError(err, table, entity)
}
