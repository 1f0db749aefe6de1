package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

type brand struct {
	ID   string
	Name string
}

type fakeBackend struct {
	mu      sync.Mutex
	log     []string
	err     error
	release chan struct{}
	started chan struct{}
}

func (b *fakeBackend) record(s string) {
	b.mu.Lock()
	b.log = append(b.log, s)
	b.mu.Unlock()
}

func (b *fakeBackend) events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.log...)
}

func (b *fakeBackend) wait() {
	if b.started != nil {
		close(b.started)
	}
	if b.release != nil {
		<-b.release
	}
}

func (b *fakeBackend) Kind() string { return "brands" }

func (b *fakeBackend) Create(_ context.Context, payload any) (brand, error) {
	b.wait()
	b.record("create")
	if b.err != nil {
		return brand{}, b.err
	}
	return brand{ID: "1", Name: payload.(brand).Name}, nil
}

func (b *fakeBackend) Update(_ context.Context, id string, _ any) (brand, error) {
	b.record("update " + id)
	return brand{ID: id}, b.err
}

func (b *fakeBackend) Delete(_ context.Context, id string) error {
	b.record("delete " + id)
	return b.err
}

func (b *fakeBackend) Action(_ context.Context, id, action string, _ any) (brand, error) {
	b.record(action + " " + id)
	return brand{ID: id}, b.err
}

type fakeCache struct{ backend *fakeBackend }

func (c fakeCache) InvalidateKind(kind string) int {
	c.backend.record("invalidate " + kind)
	return 1
}

func newDispatcher(b *fakeBackend) *Dispatcher[brand] {
	return New(Config[brand]{
		Backend: b,
		Cache:   fakeCache{backend: b},
		Refetch: func(context.Context) error {
			b.record("refetch")
			return nil
		},
	})
}

func TestDeleteInvalidatesAndRefetchesBeforeReturning(t *testing.T) {
	b := &fakeBackend{}
	d := newDispatcher(b)

	require.NoError(t, d.Delete(context.Background(), "7"))
	assert.Equal(t, []string{"delete 7", "invalidate brands", "refetch"}, b.events())
}

func TestCreateReturnsEntity(t *testing.T) {
	b := &fakeBackend{}
	d := newDispatcher(b)

	got, err := d.Create(context.Background(), brand{Name: "Ray-Ban"})
	require.NoError(t, err)
	assert.Equal(t, "Ray-Ban", got.Name)
	assert.Equal(t, []string{"create", "invalidate brands", "refetch"}, b.events())
}

func TestValidationErrorBecomesTranslatedFieldErrors(t *testing.T) {
	b := &fakeBackend{err: apperrors.Validation("", map[string][]string{
		"email": {"The email has already been taken."},
		"phone": {"The phone must be numeric."},
	})}
	d := newDispatcher(b)

	_, err := d.Create(context.Background(), brand{})
	var fe *FieldErrors
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "A patient with this email already exists.", fe.Get("email"))
	assert.Equal(t, "The phone must be numeric.", fe.Get("phone"))
	assert.Equal(t, []string{"email", "phone"}, fe.Names())
	assert.True(t, apperrors.IsValidation(err))

	assert.Equal(t, []string{"create"}, b.events(), "no invalidation after a failure")
}

func TestServerErrorPassesThrough(t *testing.T) {
	b := &fakeBackend{err: apperrors.Server(500, "boom")}
	d := newDispatcher(b)

	err := d.Delete(context.Background(), "3")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindServer, appErr.Kind)
	assert.Equal(t, "boom", appErr.Message)
}

func TestUnclassifiedErrorIsWrapped(t *testing.T) {
	b := &fakeBackend{err: errors.New("raw")}
	d := newDispatcher(b)

	err := d.Delete(context.Background(), "3")
	_, ok := apperrors.As(err)
	assert.True(t, ok)
}

func TestSecondMutationWhilePendingIsRefused(t *testing.T) {
	b := &fakeBackend{started: make(chan struct{}), release: make(chan struct{})}
	d := newDispatcher(b)

	done := make(chan error, 1)
	go func() {
		_, err := d.Create(context.Background(), brand{Name: "Oakley"})
		done <- err
	}()
	<-b.started
	assert.True(t, d.Pending())

	_, err := d.Create(context.Background(), brand{Name: "Oakley"})
	assert.ErrorIs(t, err, ErrMutationPending)

	close(b.release)
	require.NoError(t, <-done)
	assert.False(t, d.Pending())
}

func TestActionUsesTransitionName(t *testing.T) {
	b := &fakeBackend{}
	d := newDispatcher(b)

	_, err := d.Action(context.Background(), "9", "approve", nil)
	require.NoError(t, err)
	assert.Equal(t, "approve 9", b.events()[0])
}

func TestTranslatorPassesUnknownMessages(t *testing.T) {
	assert.Equal(t, "whatever", DefaultTranslator.Translate("whatever"))
	assert.Equal(t, "x", Translator{"a": "x"}.Translate("a"))
}
