package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/pkg/collection"
)

// All repository interfaces in one file
type (
	BrandRepository interface {
		List(ctx context.Context, q collection.Query) ([]model.Brand, int, error)
		Get(ctx context.Context, id int64) (*model.Brand, error)
		Create(ctx context.Context, brand *model.Brand) error
		Update(ctx context.Context, brand *model.Brand) error
		Delete(ctx context.Context, id int64) error
	}

	CategoryRepository interface {
		List(ctx context.Context, q collection.Query) ([]model.Category, int, error)
		Get(ctx context.Context, id int64) (*model.Category, error)
		Create(ctx context.Context, category *model.Category) error
		Update(ctx context.Context, category *model.Category) error
		Delete(ctx context.Context, id int64) error
	}

	SupplierRepository interface {
		List(ctx context.Context, q collection.Query) ([]model.Supplier, int, error)
		Get(ctx context.Context, id int64) (*model.Supplier, error)
		Create(ctx context.Context, supplier *model.Supplier) error
		Update(ctx context.Context, supplier *model.Supplier) error
		Delete(ctx context.Context, id int64) error
	}

	ProductRepository interface {
		List(ctx context.Context, q collection.Query) ([]model.Product, int, error)
		Get(ctx context.Context, id int64) (*model.Product, error)
		Create(ctx context.Context, product *model.Product) error
		Update(ctx context.Context, product *model.Product) error
		Delete(ctx context.Context, id int64) error
	}

	PatientRepository interface {
		List(ctx context.Context, q collection.Query) ([]model.Patient, int, error)
		Get(ctx context.Context, id int64) (*model.Patient, error)
		Create(ctx context.Context, patient *model.Patient) error
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id int64) error
	}

	DiscountRequestRepository interface {
		List(ctx context.Context, q collection.Query) ([]model.DiscountRequest, int, error)
		Get(ctx context.Context, id int64) (*model.DiscountRequest, error)
		Create(ctx context.Context, req *model.DiscountRequest) error
		// Decide moves a pending request to approved or rejected.
		Decide(ctx context.Context, req *model.DiscountRequest) error
	}

	UserRepository interface {
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		TouchLogin(ctx context.Context, id int64, at time.Time) error
		Create(ctx context.Context, user *model.User) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		CreateTx(ctx context.Context, tx sqlx.ExtContext, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, tx *sqlx.Tx, limit int) ([]*model.OutboxEvent, error)
		BeginTx(ctx context.Context) (*sqlx.Tx, error)
		UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
