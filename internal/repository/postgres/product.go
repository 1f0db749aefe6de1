package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	"github.com/jwalitptl/optica-admin/pkg/collection"
)

var ProductList = ListSpec{
	Select: `p.id, p.name, p.sku, p.brand_id, b.name AS brand_name, p.category_id,
		c.name AS category_name, p.supplier_id, p.price, p.stock, p.status, p.created_at, p.updated_at`,
	From: "products p JOIN brands b ON b.id = p.brand_id JOIN categories c ON c.id = p.category_id",
	Search: map[string]string{
		"name":     "p.name",
		"sku":      "p.sku",
		"brand":    "b.name",
		"category": "c.name",
	},
	Filters: map[string]string{
		"status":      "p.status",
		"brand_id":    "p.brand_id",
		"category_id": "p.category_id",
		"supplier_id": "p.supplier_id",
	},
	Sorts: map[string]string{
		"name":       "p.name",
		"price":      "p.price",
		"stock":      "p.stock",
		"created_at": "p.created_at",
	},
	Order: "p.name ASC, p.id ASC",
}

type productRepository struct {
	BaseRepository
}

func NewProductRepository(base BaseRepository) repository.ProductRepository {
	return &productRepository{base}
}

func (r *productRepository) List(ctx context.Context, q collection.Query) ([]model.Product, int, error) {
	var products []model.Product
	total, err := r.list(ctx, &products, ProductList, q)
	if err != nil {
		return nil, 0, mapError(err, "products", "product")
	}
	return products, total, nil
}

func (r *productRepository) Get(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	query := "SELECT " + ProductList.Select + " FROM " + ProductList.From + " WHERE p.id = $1"
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		return nil, mapError(err, "products", "product")
	}
	return &product, nil
}

func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO products (name, sku, brand_id, category_id, supplier_id, price, stock, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, p.Name, p.SKU, p.BrandID, p.CategoryID, p.SupplierID, p.Price, p.Stock, p.Status).
			Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "products", "create", model.EntityPayload{ID: p.ID})
	})
	return mapError(err, "products", "product")
}

func (r *productRepository) Update(ctx context.Context, p *model.Product) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE products
			SET name = $1, sku = $2, brand_id = $3, category_id = $4, supplier_id = $5,
				price = $6, stock = $7, status = $8, updated_at = NOW()
			WHERE id = $9
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, query, p.Name, p.SKU, p.BrandID, p.CategoryID, p.SupplierID, p.Price, p.Stock, p.Status, p.ID).
			Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
			return err
		}
		return r.emit(ctx, tx, "products", "update", model.EntityPayload{ID: p.ID})
	})
	return mapError(err, "products", "product")
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "products", "product", id)
}
