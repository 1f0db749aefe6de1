package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optica-admin/pkg/apiclient"
	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/form"
	"github.com/jwalitptl/optica-admin/pkg/logger"
	"github.com/jwalitptl/optica-admin/pkg/messaging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestApp(t *testing.T, h http.Handler) (*app, *syncBuffer, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	out := &syncBuffer{}
	return &app{
		log:    logger.Nop(),
		client: apiclient.New(apiclient.Config{BaseURL: srv.URL, Token: "session"}),
		cache:  collection.NewCache(time.Minute, 0),
		out:    out,
	}, out, &hits
}

func run(a *app, args ...string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func page(data ...map[string]any) map[string]any {
	if data == nil {
		data = []map[string]any{}
	}
	return map[string]any{"data": data, "current_page": 1, "last_page": 1, "per_page": 15, "total": len(data)}
}

func TestListShortSearchMakesNoRequest(t *testing.T) {
	a, out, hits := newTestApp(t, http.NotFoundHandler())

	require.NoError(t, run(a, "list", "brands", "--search", "ra"))
	assert.Equal(t, "type at least 3 characters\n", out.String())
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestListProductsWithLookups(t *testing.T) {
	queries := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		writeJSON(w, http.StatusOK, page(map[string]any{
			"id": 1, "name": "Aviator", "sku": "AV-1", "brand_name": "Ray-Ban",
			"category_name": "Sunglasses", "price": "120", "stock": 4, "status": "active",
		}))
	})
	mux.HandleFunc("/api/v1/brands", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		writeJSON(w, http.StatusOK, page(map[string]any{"id": 1, "name": "Ray-Ban"}))
	})
	mux.HandleFunc("/api/v1/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "boom"})
	})
	a, out, _ := newTestApp(t, mux)

	err := run(a, "list", "products", "--search", "avia", "--fields", "name,sku", "--filter", "brand_id=1", "--sort", "name:desc")
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Aviator")
	assert.Contains(t, got, "$120.00")
	assert.Contains(t, got, "page 1 of 1")
	assert.Contains(t, got, "brand_id: Ray-Ban (1)")
	assert.NotContains(t, got, "category_id:", "a failed lookup is left out")

	productQuery := <-queries
	assert.Contains(t, productQuery, "brand_id=1")
	assert.Contains(t, productQuery, "sort_field=name")
	assert.Contains(t, productQuery, "sort_dir=desc")
	assert.Contains(t, productQuery, "s_o=or")
}

func TestListRejectsMalformedFilter(t *testing.T) {
	a, _, hits := newTestApp(t, http.NotFoundHandler())

	err := run(a, "list", "brands", "--filter", "status")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key=value")
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestUnknownResource(t *testing.T) {
	a, _, _ := newTestApp(t, http.NotFoundHandler())
	err := run(a, "list", "lenses")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource")
}

func TestRejectWithoutReasonIsRefusedLocally(t *testing.T) {
	a, _, hits := newTestApp(t, http.NotFoundHandler())

	err := run(a, "discounts", "reject", "5", "--reason", "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestRejectSendsReason(t *testing.T) {
	bodies := make(chan map[string]string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/discount-requests/5/reject", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		bodies <- body
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": 5, "status": "rejected"}})
	})
	a, out, _ := newTestApp(t, mux)

	require.NoError(t, run(a, "discounts", "reject", "5", "--reason", " over budget "))
	assert.Equal(t, "over budget", (<-bodies)["rejection_reason"])
	assert.Contains(t, out.String(), "discount request 5 rejected")
}

func TestApproveConflictIsReturned(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/discount-requests/5/approve", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"message": "The discount request has already been rejected."})
	})
	a, _, _ := newTestApp(t, mux)

	err := run(a, "discounts", "approve", "5")
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestBrandsCreateValidatesLocally(t *testing.T) {
	a, out, hits := newTestApp(t, http.NotFoundHandler())

	err := run(a, "brands", "create", "--name", " ")
	require.Error(t, err)
	assert.Contains(t, out.String(), "name:")
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestBrandsCreate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/brands", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		assert.Equal(t, "Oakley", in["name"])
		writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"id": 3, "name": "Oakley"}})
	})
	a, out, _ := newTestApp(t, mux)

	require.NoError(t, run(a, "brands", "create", "--name", "Oakley", "--description", "Sport"))
	assert.Contains(t, out.String(), "brand 3 created")
	assert.Contains(t, out.String(), "[success] Brand saved.")
}

func writeDraft(t *testing.T, draft map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(draft)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "draft.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func validDraft() map[string]any {
	return map[string]any{
		"first_name":     "Ana",
		"last_name":      "García",
		"identification": "0102030405",
		"email":          "ana@example.com",
		"phone":          "0991234567",
	}
}

func TestPatientWizardStopsOnInvalidStep(t *testing.T) {
	a, out, hits := newTestApp(t, http.NotFoundHandler())
	draft := validDraft()
	delete(draft, "email")

	err := run(a, "patients", "create", "--file", writeDraft(t, draft))
	var se *form.StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "contact", se.Step)
	assert.Contains(t, out.String(), "step 2/5: Contact")
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestPatientWizardSubmits(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/patients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"id": 9, "first_name": "Ana"}})
	})
	a, out, _ := newTestApp(t, mux)

	require.NoError(t, run(a, "patients", "create", "--file", writeDraft(t, validDraft())))
	got := out.String()
	assert.Contains(t, got, "step 5/5: Photo")
	assert.Contains(t, got, "patient 9 created")
}

func TestPatientServerValidationPointsAtStep(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/patients", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "The given data was invalid.",
			"errors":  map[string][]string{"email": {"The email has already been taken."}},
		})
	})
	a, out, _ := newTestApp(t, mux)

	err := run(a, "patients", "create", "--file", writeDraft(t, validDraft()))
	require.Error(t, err)
	got := out.String()
	assert.Contains(t, got, "email: A patient with this email already exists.")
	assert.Contains(t, got, "fix the contact step")
}

func TestDocumentsURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/documents/patient-record/4/token", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"data": map[string]any{"pdf_token": "abc"}})
	})
	a, out, _ := newTestApp(t, mux)

	require.NoError(t, run(a, "documents", "url", "patient-record", "4"))
	assert.Contains(t, out.String(), "/api/v1/documents/patient-record/4/pdf?pdf_token=abc")
}

func TestDelete(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/brands/3", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Brand deleted successfully."})
	})
	a, out, _ := newTestApp(t, mux)

	require.NoError(t, run(a, "delete", "brands", "3"))
	assert.Contains(t, out.String(), "brands 3 deleted")
}

type fakeFeed struct {
	trigger chan messaging.ChangeEvent
}

func (f *fakeFeed) Watch(ctx context.Context, kind string, h messaging.Handler) (<-chan struct{}, error) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-f.trigger:
				_ = h(ctx, ev)
			}
		}
	}()
	return done, nil
}

func TestWatchRefetchesOnChange(t *testing.T) {
	var fetches int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/brands", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&fetches, 1)
		name := "Ray-Ban"
		if n > 1 {
			name = "Persol"
		}
		writeJSON(w, http.StatusOK, page(map[string]any{"id": n, "name": name, "status": "active"}))
	})
	a, out, _ := newTestApp(t, mux)

	s, err := a.screen("brands")
	require.NoError(t, err)
	feed := &fakeFeed{trigger: make(chan messaging.ChangeEvent)}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- a.watch(ctx, s, collection.NewQuery(), feed) }()

	require.Eventually(t, func() bool { return atomic.LoadInt32(&fetches) == 1 }, 2*time.Second, 10*time.Millisecond)
	feed.trigger <- messaging.ChangeEvent{Kind: "brands", Action: "create", ID: "2"}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&fetches) == 2 }, 2*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "Persol") }, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
}
