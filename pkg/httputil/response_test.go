package httputil_test

import (
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
	"github.com/jwalitptl/optica-admin/pkg/httputil"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.ConfigureBinding()
}

func postDiscount(t *testing.T, body string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	bound := false
	r := gin.New()
	r.POST("/discounts", func(c *gin.Context) {
		var in model.DiscountRequestInput
		if err := httputil.BindJSON(c, &in); err != nil {
			httputil.RespondWithError(c, err)
			return
		}
		bound = true
		c.Status(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/discounts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w, bound
}

func TestBindJSONReportsTagAndRuleErrorsTogether(t *testing.T) {
	w, bound := postDiscount(t, `{"patient_id": 3, "percentage": 150}`)
	require.False(t, bound)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body httputil.ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Errors, "reason")
	assert.Equal(t, []string{"The percentage must be between 0 and 100."}, body.Errors["percentage"])
}

func TestBindJSONLeavesRuleErrorsToServiceWhenTagsPass(t *testing.T) {
	_, bound := postDiscount(t, `{"patient_id": 3, "percentage": 150, "reason": "loyal"}`)
	assert.True(t, bound)
}

func TestMergeFields(t *testing.T) {
	assert.Nil(t, httputil.MergeFields(nil, nil))

	got := httputil.MergeFields(nil, map[string][]string{"price": {"a"}})
	assert.Equal(t, map[string][]string{"price": {"a"}}, got)

	got = httputil.MergeFields(map[string][]string{"price": {"a"}, "name": {"b"}}, map[string][]string{"price": {"c"}})
	assert.Equal(t, []string{"a", "c"}, got["price"])
	assert.Equal(t, []string{"b"}, got["name"])
}
