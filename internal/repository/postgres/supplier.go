package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	"github.com/jwalitptl/optica-admin/pkg/collection"
)

const supplierColumns = "id, name, contact_name, email, phone, address, status, created_at, updated_at"

var SupplierList = ListSpec{
	Select: supplierColumns,
	From:   "suppliers",
	Search: map[string]string{
		"name":         "name",
		"contact_name": "COALESCE(contact_name, '')",
		"email":        "COALESCE(email, '')",
		"phone":        "COALESCE(phone, '')",
	},
	Filters: map[string]string{"status": "status"},
	Sorts: map[string]string{
		"name":       "name",
		"created_at": "created_at",
	},
	Order: "name ASC, id ASC",
}

type supplierRepository struct {
	BaseRepository
}

func NewSupplierRepository(base BaseRepository) repository.SupplierRepository {
	return &supplierRepository{base}
}

func (r *supplierRepository) List(ctx context.Context, q collection.Query) ([]model.Supplier, int, error) {
	var suppliers []model.Supplier
	total, err := r.list(ctx, &suppliers, SupplierList, q)
	if err != nil {
		return nil, 0, mapError(err, "suppliers", "supplier")
	}
	return suppliers, total, nil
}

func (r *supplierRepository) Get(ctx context.Context, id int64) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.GetContext(ctx, &supplier, "SELECT "+supplierColumns+" FROM suppliers WHERE id = $1", id); err != nil {
		return nil, mapError(err, "suppliers", "supplier")
	}
	return &supplier, nil
}

func (r *supplierRepository) Create(ctx context.Context, s *model.Supplier) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO suppliers (name, contact_name, email, phone, address, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.Status).
			Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "suppliers", "create", model.EntityPayload{ID: s.ID})
	})
	return mapError(err, "suppliers", "supplier")
}

func (r *supplierRepository) Update(ctx context.Context, s *model.Supplier) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE suppliers
			SET name = $1, contact_name = $2, email = $3, phone = $4, address = $5, status = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, s.Name, s.ContactName, s.Email, s.Phone, s.Address, s.Status, s.ID).
			Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "suppliers", "update", model.EntityPayload{ID: s.ID})
	})
	return mapError(err, "suppliers", "supplier")
}

func (r *supplierRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "suppliers", "supplier", id)
}
