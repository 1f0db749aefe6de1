package resource

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/optica-admin/pkg/collection"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/httputil"
)

// Service is what a collection resource needs from its service layer.
type Service[T, In any] interface {
	List(ctx context.Context, q collection.Query) (collection.Page[T], error)
	Get(ctx context.Context, id int64) (*T, error)
	Create(ctx context.Context, in In) (*T, error)
	Update(ctx context.Context, id int64, in In) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves list/get/create/update/delete for one resource path.
type Handler[T, In any] struct {
	path    string
	label   string
	service Service[T, In]
	options collection.ParseOptions
}

// NewHandler mounts svc under /<path>. label names the record in messages,
// e.g. "Brand". options whitelists the list parameters.
func NewHandler[T, In any](path, label string, svc Service[T, In], options collection.ParseOptions) *Handler[T, In] {
	return &Handler[T, In]{path: path, label: label, service: svc, options: options}
}

func (h *Handler[T, In]) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/" + h.path)
	{
		g.GET("", h.List)
		g.POST("", h.Create)
		g.GET("/:id", h.Get)
		g.PUT("/:id", h.Update)
		g.DELETE("/:id", h.Delete)
	}
}

func (h *Handler[T, In]) List(c *gin.Context) {
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

func (h *Handler[T, In]) Get(c *gin.Context) {
	id, err := h.id(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	rec, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithData(c, http.StatusOK, rec)
}

func (h *Handler[T, In]) Create(c *gin.Context) {
	var in In
	if err := httputil.BindJSON(c, &in); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	rec, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithData(c, http.StatusCreated, rec)
}

func (h *Handler[T, In]) Update(c *gin.Context) {
	id, err := h.id(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var in In
	if err := httputil.BindJSON(c, &in); err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	rec, err := h.service.Update(c.Request.Context(), id, in)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithData(c, http.StatusOK, rec)
}

func (h *Handler[T, In]) Delete(c *gin.Context) {
	id, err := h.id(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithMessage(c, http.StatusOK, h.label+" deleted successfully.")
}

// id parses the :id segment. Anything that is not a positive integer cannot
// name a record, so it is a 404 rather than a 400.
func (h *Handler[T, In]) id(c *gin.Context) (int64, error) {
	return ParseID(c.Param("id"), h.label)
}

func ParseID(raw, label string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.NotFound(label, err)
	}
	return id, nil
}
