package discount

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/optica-admin/internal/middleware"
	"github.com/jwalitptl/optica-admin/internal/model"
	discountsvc "github.com/jwalitptl/optica-admin/internal/service/discount"
	"github.com/jwalitptl/optica-admin/pkg/auth"
	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

type memRepo struct {
	rows map[int64]*model.DiscountRequest
}

func (m *memRepo) List(context.Context, collection.Query) ([]model.DiscountRequest, int, error) {
	out := make([]model.DiscountRequest, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, *r)
	}
	return out, len(out), nil
}

func (m *memRepo) Get(_ context.Context, id int64) (*model.DiscountRequest, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, apperrors.NotFound("Discount request", nil)
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) Create(_ context.Context, r *model.DiscountRequest) error {
	r.ID = int64(len(m.rows) + 1)
	r.Status = model.DiscountStatusPending
	cp := *r
	m.rows[r.ID] = &cp
	return nil
}

func (m *memRepo) Decide(_ context.Context, r *model.DiscountRequest) error {
	cur, ok := m.rows[r.ID]
	if !ok {
		return apperrors.NotFound("Discount request", nil)
	}
	if cur.Status != model.DiscountStatusPending {
		return apperrors.Conflict("The discount request has already been " + string(cur.Status) + ".")
	}
	cur.Status, cur.RejectionReason, cur.DecidedBy = r.Status, r.RejectionReason, r.DecidedBy
	*r = *cur
	return nil
}

func setup() (*gin.Engine, *memRepo) {
	gin.SetMode(gin.TestMode)
	middleware.ConfigureBinding()

	repo := &memRepo{rows: map[int64]*model.DiscountRequest{
		1: {Base: model.Base{ID: 1}, PatientID: 4, Status: model.DiscountStatusPending},
	}}
	r := gin.New()
	api := r.Group("/api/v1", func(c *gin.Context) {
		c.Set(middleware.ContextClaims, &auth.Claims{UserID: 1, Email: "admin@optica.test", Role: model.UserRoleAdmin})
	})
	NewHandler(discountsvc.NewService(repo), collection.ParseOptions{Filters: []string{"status"}}).RegisterRoutes(api)
	return r, repo
}

func post(r http.Handler, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, target, nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestRejectWithoutReason(t *testing.T) {
	r, repo := setup()

	for _, body := range []string{"", `{}`, `{"rejection_reason":"  "}`} {
		w, out := post(r, "/api/v1/discount-requests/1/reject", body)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, "body %q", body)
		errs := out["errors"].(map[string]interface{})
		assert.Equal(t, []interface{}{"The rejection reason field is required."}, errs["rejection_reason"])
	}
	assert.Equal(t, model.DiscountStatusPending, repo.rows[1].Status)
}

func TestRejectThenConflict(t *testing.T) {
	r, repo := setup()

	w, out := post(r, "/api/v1/discount-requests/1/reject", `{"rejection_reason":"Already on sale"}`)
	require.Equal(t, http.StatusOK, w.Code)
	data := out["data"].(map[string]interface{})
	assert.Equal(t, "rejected", data["status"])
	assert.Equal(t, "Already on sale", data["rejection_reason"])
	assert.Equal(t, "admin@optica.test", *repo.rows[1].DecidedBy)

	w, out = post(r, "/api/v1/discount-requests/1/approve", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "The discount request has already been rejected.", out["message"])
}

func TestApprove(t *testing.T) {
	r, _ := setup()

	w, out := post(r, "/api/v1/discount-requests/1/approve", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "approved", out["data"].(map[string]interface{})["status"])

	w, _ = post(r, "/api/v1/discount-requests/42/approve", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateRecordsRequester(t *testing.T) {
	r, repo := setup()

	w, _ := post(r, "/api/v1/discount-requests", `{"patient_id":4,"percentage":"15","reason":"Loyal customer"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "admin@optica.test", repo.rows[2].RequestedBy)

	w, out := post(r, "/api/v1/discount-requests", `{"patient_id":4,"percentage":"150","reason":"x"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, out["errors"], "percentage")
}
