package document

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/pkg/auth"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

type Tokens interface {
	GenerateDocumentToken(claims auth.Claims, kind, id string) (string, time.Time, error)
	ValidateDocumentToken(token, kind, id string) (*auth.Claims, error)
}

// Loader fetches the record a document is printed from.
type Loader func(ctx context.Context, id int64) (interface{}, error)

type Service struct {
	tokens   Tokens
	renderer Renderer
	loaders  map[string]Loader
	baseURL  string
}

// NewService serves the document kinds present in loaders. baseURL is the
// public address of the API, used to build download links.
func NewService(tokens Tokens, renderer Renderer, baseURL string, loaders map[string]Loader) *Service {
	return &Service{
		tokens:   tokens,
		renderer: renderer,
		loaders:  loaders,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// IssueToken mints a pdf_token for an existing record.
func (s *Service) IssueToken(ctx context.Context, claims auth.Claims, kind, rawID string) (*model.DocumentToken, error) {
	if _, err := s.load(ctx, kind, rawID); err != nil {
		return nil, err
	}

	token, expiresAt, err := s.tokens.GenerateDocumentToken(claims, kind, rawID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.DocumentToken{
		PDFToken:  token,
		ExpiresAt: expiresAt,
		URL: fmt.Sprintf("%s/api/v1/documents/%s/%s/pdf?%s",
			s.baseURL, url.PathEscape(kind), url.PathEscape(rawID), url.Values{"pdf_token": {token}}.Encode()),
	}, nil
}

// Render checks pdfToken against kind/id and returns the PDF.
func (s *Service) Render(ctx context.Context, pdfToken, kind, rawID string) ([]byte, error) {
	if pdfToken == "" {
		return nil, apperrors.Unauthorized(nil)
	}
	if _, err := s.tokens.ValidateDocumentToken(pdfToken, kind, rawID); err != nil {
		return nil, apperrors.Unauthorized(err)
	}

	record, err := s.load(ctx, kind, rawID)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, kind, record)
}

func (s *Service) load(ctx context.Context, kind, rawID string) (interface{}, error) {
	loader, ok := s.loaders[kind]
	if !ok {
		return nil, apperrors.NotFound("document", nil)
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id < 1 {
		return nil, apperrors.NotFound(model.DocumentKinds[kind], err)
	}
	return loader(ctx, id)
}
