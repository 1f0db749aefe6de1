package document

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/optica-admin/internal/middleware"
	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/pkg/auth"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/httputil"
)

type Service interface {
	IssueToken(ctx context.Context, claims auth.Claims, kind, rawID string) (*model.DocumentToken, error)
	Render(ctx context.Context, pdfToken, kind, rawID string) ([]byte, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts token issuing on the authenticated group and the
// download on the public one. Downloads are authorised by pdf_token alone.
func (h *Handler) RegisterRoutes(protected, public *gin.RouterGroup) {
	protected.POST("/documents/:kind/:id/token", h.IssueToken)
	public.GET("/documents/:kind/:id/pdf", h.Download)
}

func (h *Handler) IssueToken(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	tok, err := h.service.IssueToken(c.Request.Context(), *claims, c.Param("kind"), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithData(c, http.StatusCreated, tok)
}

func (h *Handler) Download(c *gin.Context) {
	pdf, err := h.service.Render(c.Request.Context(), c.Query("pdf_token"), c.Param("kind"), c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+c.Param("kind")+"-"+c.Param("id")+`.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
