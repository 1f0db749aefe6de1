package discount

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/optica-admin/internal/handler/resource"
	"github.com/jwalitptl/optica-admin/internal/middleware"
	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/httputil"
)

const label = "Discount request"

type Service interface {
	List(ctx context.Context, q collection.Query) (collection.Page[model.DiscountRequest], error)
	Get(ctx context.Context, id int64) (*model.DiscountRequest, error)
	Create(ctx context.Context, in model.DiscountRequestInput, requestedBy string) (*model.DiscountRequest, error)
	Approve(ctx context.Context, id int64, decidedBy string) (*model.DiscountRequest, error)
	Reject(ctx context.Context, id int64, reason, decidedBy string) (*model.DiscountRequest, error)
}

type Handler struct {
	service Service
	options collection.ParseOptions
}

func NewHandler(service Service, options collection.ParseOptions) *Handler {
	return &Handler{service: service, options: options}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/discount-requests")
	{
		requests.GET("", h.List)
		requests.POST("", h.Create)
		requests.GET("/:id", h.Get)
		requests.POST("/:id/approve", h.Approve)
		requests.POST("/:id/reject", h.Reject)
	}
}

func (h *Handler) List(c *gin.Context) {
	q, err := collection.ParseQuery(c.Request.URL.Query(), h.options)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}
	page, err := h.service.List(c.Request.Context(), q)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithPage(c, page)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := resource.ParseID(c.Param("id"), label)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	req, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithData(c, http.StatusOK, req)
}

func (h *Handler) Create(c *gin.Context) {
	var in model.DiscountRequestInput
	if err := httputil.BindJSON(c, &in); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	req, err := h.service.Create(c.Request.Context(), in, actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithData(c, http.StatusCreated, req)
}

func (h *Handler) Approve(c *gin.Context) {
	id, err := resource.ParseID(c.Param("id"), label)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	req, err := h.service.Approve(c.Request.Context(), id, actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithData(c, http.StatusOK, req)
}

// Reject needs a non-blank rejection_reason. An empty body goes straight to
// the service so it reports the same 422 as a blank reason.
func (h *Handler) Reject(c *gin.Context) {
	id, err := resource.ParseID(c.Param("id"), label)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var in model.RejectDiscountInput
	if c.Request.ContentLength != 0 {
		if err := httputil.BindJSON(c, &in); err != nil {
			httputil.RespondWithError(c, err)
			return
		}
	}

	req, err := h.service.Reject(c.Request.Context(), id, in.RejectionReason, actor(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithData(c, http.StatusOK, req)
}

func actor(c *gin.Context) string {
	if claims, ok := middleware.ClaimsFrom(c); ok {
		return claims.Email
	}
	return ""
}
