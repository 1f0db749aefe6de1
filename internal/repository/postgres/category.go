package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	"github.com/jwalitptl/optica-admin/pkg/collection"
)

var CategoryList = ListSpec{
	Select: "id, name, description, status, created_at, updated_at",
	From:   "categories",
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

type categoryRepository struct {
	BaseRepository
}

func NewCategoryRepository(base BaseRepository) repository.CategoryRepository {
	return &categoryRepository{base}
}

func (r *categoryRepository) List(ctx context.Context, q collection.Query) ([]model.Category, int, error) {
	var categories []model.Category
	total, err := r.list(ctx, &categories, CategoryList, q)
	if err != nil {
		return nil, 0, mapError(err, "categories", "category")
	}
	return categories, total, nil
}

func (r *categoryRepository) Get(ctx context.Context, id int64) (*model.Category, error) {
	var category model.Category
	query := `SELECT id, name, description, status, created_at, updated_at FROM categories WHERE id = $1`
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, mapError(err, "categories", "category")
	}
	return &category, nil
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO categories (name, description, status, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, category.Name, category.Description, category.Status).
			Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "categories", "create", model.EntityPayload{ID: category.ID})
	})
	return mapError(err, "categories", "category")
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE categories SET name = $1, description = $2, status = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, category.Name, category.Description, category.Status, category.ID).
			Scan(&category.CreatedAt, &category.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "categories", "update", model.EntityPayload{ID: category.ID})
	})
	return mapError(err, "categories", "category")
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "categories", "category", id)
}
