package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

const discountColumns = `d.id, d.patient_id, p.first_name || ' ' || p.last_name AS patient_name, d.product_id,
	d.percentage, d.reason, d.requested_by, d.status, d.rejection_reason, d.decided_by, d.decided_at,
	d.created_at, d.updated_at`

var DiscountRequestList = ListSpec{
	Select: discountColumns,
	From:   "discount_requests d JOIN patients p ON p.id = d.patient_id",
	Search: map[string]string{
		"patient":      "p.first_name || ' ' || p.last_name",
		"reason":       "d.reason",
		"requested_by": "d.requested_by",
	},
	Filters: map[string]string{
		"status":     "d.status",
		"patient_id": "d.patient_id",
	},
	Sorts: map[string]string{
		"created_at": "d.created_at",
		"percentage": "d.percentage",
	},
	Order: "d.created_at DESC, d.id DESC",
}

type discountRequestRepository struct {
	BaseRepository
}

func NewDiscountRequestRepository(base BaseRepository) repository.DiscountRequestRepository {
	return &discountRequestRepository{base}
}

func (r *discountRequestRepository) List(ctx context.Context, q collection.Query) ([]model.DiscountRequest, int, error) {
	var reqs []model.DiscountRequest
	total, err := r.list(ctx, &reqs, DiscountRequestList, q)
	if err != nil {
		return nil, 0, mapError(err, "discount_requests", "discount request")
	}
	return reqs, total, nil
}

func (r *discountRequestRepository) Get(ctx context.Context, id int64) (*model.DiscountRequest, error) {
	req, err := r.get(ctx, r.db, id, false)
	if err != nil {
		return nil, mapError(err, "discount_requests", "discount request")
	}
	return req, nil
}

func (r *discountRequestRepository) get(ctx context.Context, q sqlx.QueryerContext, id int64, lock bool) (*model.DiscountRequest, error) {
	query := "SELECT " + discountColumns + " FROM " + DiscountRequestList.From + " WHERE d.id = $1"
	if lock {
		query += " FOR UPDATE OF d"
	}
	var req model.DiscountRequest
	if err := sqlx.GetContext(ctx, q, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *discountRequestRepository) Create(ctx context.Context, req *model.DiscountRequest) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO discount_requests (patient_id, product_id, percentage, reason, requested_by, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			RETURNING id
		`
		var id int64
		if err := tx.QueryRowxContext(ctx, query,
			req.PatientID, req.ProductID, req.Percentage, req.Reason, req.RequestedBy, model.DiscountStatusPending,
		).Scan(&id); err != nil {
			return err
		}
		created, err := r.get(ctx, tx, id, false)
		if err != nil {
			return err
		}
		*req = *created
		return r.emit(ctx, tx, "discount-requests", "create", model.EntityPayload{ID: id})
	})
	return mapError(err, "discount_requests", "discount request")
}

// Decide locks the row, refuses anything that is no longer pending and
// records the decision together with its outbox event.
func (r *discountRequestRepository) Decide(ctx context.Context, req *model.DiscountRequest) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := r.get(ctx, tx, req.ID, true)
		if err != nil {
			return err
		}
		if current.Status != model.DiscountStatusPending {
			return apperrors.Conflict(fmt.Sprintf("The discount request has already been %s.", current.Status))
		}

		query := `
			UPDATE discount_requests
			SET status = $1, rejection_reason = $2, decided_by = $3, decided_at = NOW(), updated_at = NOW()
			WHERE id = $4
		`
		if _, err := tx.ExecContext(ctx, query, req.Status, req.RejectionReason, req.DecidedBy, req.ID); err != nil {
			return err
		}

		decided, err := r.get(ctx, tx, req.ID, false)
		if err != nil {
			return err
		}
		*req = *decided

		action := "approve"
		if req.Status == model.DiscountStatusRejected {
			action = "reject"
		}
		var decidedBy string
		if req.DecidedBy != nil {
			decidedBy = *req.DecidedBy
		}
		return r.emit(ctx, tx, "discount-requests", action, model.DiscountDecision{
			ID:              req.ID,
			Status:          req.Status,
			RequestedBy:     req.RequestedBy,
			PatientName:     req.PatientName,
			Percentage:      req.Percentage.String(),
			RejectionReason: req.RejectionReason,
			DecidedBy:       decidedBy,
		})
	})
	return mapError(err, "discount_requests", "discount request")
}
