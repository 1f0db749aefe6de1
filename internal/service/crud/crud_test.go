package crud

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

type memStore struct {
	rows   map[int64]model.Brand
	nextID int64
}

func newMemStore() *memStore { return &memStore{rows: map[int64]model.Brand{}} }

func (m *memStore) List(_ context.Context, q collection.Query) ([]model.Brand, int, error) {
	out := make([]model.Brand, 0, len(m.rows))
	for _, b := range m.rows {
		out = append(out, b)
	}
	return out, len(out), nil
}

func (m *memStore) Get(_ context.Context, id int64) (*model.Brand, error) {
	b, ok := m.rows[id]
	if !ok {
		return nil, apperrors.NotFound("brand", nil)
	}
	return &b, nil
}

func (m *memStore) Create(_ context.Context, b *model.Brand) error {
	for _, existing := range m.rows {
		if existing.Name == b.Name {
			return apperrors.FieldError("name", "The name has already been taken.")
		}
	}
	m.nextID++
	b.ID = m.nextID
	m.rows[b.ID] = *b
	return nil
}

func (m *memStore) Update(_ context.Context, b *model.Brand) error {
	m.rows[b.ID] = *b
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	if _, ok := m.rows[id]; !ok {
		return apperrors.NotFound("brand", nil)
	}
	delete(m.rows, id)
	return nil
}

func brandService(store Store[model.Brand]) *Service[model.Brand, model.BrandInput] {
	return NewService[model.Brand, model.BrandInput](store, Mapper[model.Brand, model.BrandInput]{
		New: func(in model.BrandInput) model.Brand {
			return model.Brand{Name: in.Name, Status: model.StatusOrDefault(in.Status)}
		},
		Apply: func(b *model.Brand, in model.BrandInput) { b.Name = in.Name },
		Check: func(in model.BrandInput) map[string][]string {
			if in.Name == "reserved" {
				return map[string][]string{"name": {"The name is reserved."}}
			}
			return nil
		},
	})
}

func TestCreateGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	svc := brandService(newMemStore())

	created, err := svc.Create(ctx, model.BrandInput{Name: "Ray-Ban"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, model.StatusActive, created.Status)

	updated, err := svc.Update(ctx, created.ID, model.BrandInput{Name: "Ray-Ban Optical"})
	require.NoError(t, err)
	assert.Equal(t, "Ray-Ban Optical", updated.Name)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := brandService(newMemStore())

	_, err := svc.Create(ctx, model.BrandInput{Name: "reserved"})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "The name is reserved.", appErr.FirstMessage("name"))

	_, err = svc.Create(ctx, model.BrandInput{Name: "Oakley"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, model.BrandInput{Name: "Oakley"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateMissingRecord(t *testing.T) {
	_, err := brandService(newMemStore()).Update(context.Background(), 9, model.BrandInput{Name: "x"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestListBuildsPage(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := brandService(store)
	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.Create(ctx, model.BrandInput{Name: name})
		require.NoError(t, err)
	}

	q := collection.NewQuery()
	q.PerPage = 2
	page, err := svc.List(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.LastPage)
	assert.Equal(t, 1, page.CurrentPage)
}
