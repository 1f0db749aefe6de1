package apiclient

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

// Envelope wraps single-entity responses.
type Envelope[T any] struct {
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Resource is the typed client for one collection endpoint, /api/v1/<name>.
type Resource[T any] struct {
	client *Client
	name   string
}

func NewResource[T any](c *Client, name string) *Resource[T] {
	return &Resource[T]{client: c, name: name}
}

// Kind is the entity kind used for cache keys and invalidation.
func (r *Resource[T]) Kind() string {
	return r.name
}

func (r *Resource[T]) path(parts ...string) string {
	p := r.name
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// Fetch loads one page of the collection.
func (r *Resource[T]) Fetch(ctx context.Context, q collection.Query) (collection.Page[T], error) {
	params, err := q.Values()
	if err != nil {
		if errors.Is(err, collection.ErrSearchTooShort) {
			appErr := apperrors.FieldError("search", "The search must be at least 3 characters.")
			appErr.Err = err
			return collection.Page[T]{}, appErr
		}
		return collection.Page[T]{}, apperrors.BadRequest(err.Error(), err)
	}

	var page collection.Page[T]
	if err := r.client.Get(ctx, r.name, params, &page); err != nil {
		return collection.Page[T]{}, err
	}
	if page.PerPage == 0 {
		page.PerPage, _ = strconv.Atoi(params.Get(collection.ParamPerPage))
	}
	return page.Normalize(), nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var env Envelope[T]
	err := r.client.Get(ctx, r.path(id), nil, &env)
	return env.Data, err
}

func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var env Envelope[T]
	err := r.client.Post(ctx, r.path(), payload, &env)
	return env.Data, err
}

func (r *Resource[T]) Update(ctx context.Context, id string, payload any) (T, error) {
	var env Envelope[T]
	err := r.client.Put(ctx, r.path(id), payload, &env)
	return env.Data, err
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, r.path(id), nil)
}

// Action posts to a state-transition endpoint such as /<name>/:id/approve.
func (r *Resource[T]) Action(ctx context.Context, id, action string, payload any) (T, error) {
	var env Envelope[T]
	err := r.client.Post(ctx, r.path(id, action), payload, &env)
	return env.Data, err
}
