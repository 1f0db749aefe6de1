package crud

import (
	"context"

	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

// Store is the repository shape shared by every collection resource.
type Store[T any] interface {
	List(ctx context.Context, q collection.Query) ([]T, int, error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, rec *T) error
	Update(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id int64) error
}

// Mapper turns request input into records.
type Mapper[T, In any] struct {
	New   func(in In) T
	Apply func(rec *T, in In)
	// Check reports rules the struct tags cannot express. Optional.
	Check func(in In) map[string][]string
}

// Service implements list/get/create/update/delete for one resource.
type Service[T, In any] struct {
	store  Store[T]
	mapper Mapper[T, In]
}

func NewService[T, In any](store Store[T], mapper Mapper[T, In]) *Service[T, In] {
	return &Service[T, In]{store: store, mapper: mapper}
}

func (s *Service[T, In]) List(ctx context.Context, q collection.Query) (collection.Page[T], error) {
	items, total, err := s.store.List(ctx, q)
	if err != nil {
		return collection.Page[T]{}, err
	}
	return collection.NewPage(items, q.Page, q.PerPage, total), nil
}

func (s *Service[T, In]) Get(ctx context.Context, id int64) (*T, error) {
	return s.store.Get(ctx, id)
}

func (s *Service[T, In]) Create(ctx context.Context, in In) (*T, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	rec := s.mapper.New(in)
	if err := s.store.Create(ctx, &rec); err != nil {
		return nil, err
	}
	return s.reload(ctx, &rec)
}

func (s *Service[T, In]) Update(ctx context.Context, id int64, in In) (*T, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mapper.Apply(rec, in)
	if err := s.store.Update(ctx, rec); err != nil {
		return nil, err
	}
	return s.reload(ctx, rec)
}

func (s *Service[T, In]) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

func (s *Service[T, In]) check(in In) error {
	if s.mapper.Check == nil {
		return nil
	}
	if fields := s.mapper.Check(in); len(fields) > 0 {
		return apperrors.Validation("", fields)
	}
	return nil
}

// reload re-reads rec so joined columns are filled in.
func (s *Service[T, In]) reload(ctx context.Context, rec *T) (*T, error) {
	id, ok := any(rec).(interface{ RecordID() int64 })
	if !ok {
		return rec, nil
	}
	return s.store.Get(ctx, id.RecordID())
}
