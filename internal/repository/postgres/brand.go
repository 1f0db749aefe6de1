package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	"github.com/jwalitptl/optica-admin/pkg/collection"
)

var BrandList = ListSpec{
	Select: "id, name, description, status, created_at, updated_at",
	From:   "brands",
	Search: map[string]string{
		"name":        "name",
		"description": "COALESCE(description, '')",
	},
	Filters: map[string]string{"status": "status"},
	Sorts: map[string]string{
		"name":       "name",
		"created_at": "created_at",
	},
	Order: "name ASC, id ASC",
}

type brandRepository struct {
	BaseRepository
}

func NewBrandRepository(base BaseRepository) repository.BrandRepository {
	return &brandRepository{base}
}

func (r *brandRepository) List(ctx context.Context, q collection.Query) ([]model.Brand, int, error) {
	var brands []model.Brand
	total, err := r.list(ctx, &brands, BrandList, q)
	if err != nil {
		return nil, 0, mapError(err, "brands", "brand")
	}
	return brands, total, nil
}

func (r *brandRepository) Get(ctx context.Context, id int64) (*model.Brand, error) {
	var brand model.Brand
	query := `SELECT id, name, description, status, created_at, updated_at FROM brands WHERE id = $1`
	if err := r.db.GetContext(ctx, &brand, query, id); err != nil {
		return nil, mapError(err, "brands", "brand")
	}
	return &brand, nil
}

func (r *brandRepository) Create(ctx context.Context, brand *model.Brand) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO brands (name, description, status, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, brand.Name, brand.Description, brand.Status).
			Scan(&brand.ID, &brand.CreatedAt, &brand.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "brands", "create", model.EntityPayload{ID: brand.ID})
	})
	return mapError(err, "brands", "brand")
}

func (r *brandRepository) Update(ctx context.Context, brand *model.Brand) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE brands SET name = $1, description = $2, status = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, brand.Name, brand.Description, brand.Status, brand.ID).
			Scan(&brand.CreatedAt, &brand.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "brands", "update", model.EntityPayload{ID: brand.ID})
	})
	return mapError(err, "brands", "brand")
}

func (r *brandRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "brands", "brand", id)
}
