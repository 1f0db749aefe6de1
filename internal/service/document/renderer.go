package document

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jwalitptl/optica-admin/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

// Renderer turns a record into PDF bytes. Rendering itself happens in an
// external service.
type Renderer interface {
	Render(ctx context.Context, kind string, record interface{}) ([]byte, error)
}

type RendererConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// HTTPRenderer posts {"kind", "data"} to <URL>/render and expects the PDF
// bytes back.
type HTTPRenderer struct {
	url    string
	client *http.Client
	cb     *circuitbreaker.CircuitBreaker
}

func NewHTTPRenderer(cfg RendererConfig) *HTTPRenderer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPRenderer{
		url:    strings.TrimRight(cfg.URL, "/") + "/render",
		client: &http.Client{Timeout: timeout},
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:                "document-renderer",
			Timeout:             30 * time.Second,
			ConsecutiveFailures: 3,
		}),
	}
}

func (r *HTTPRenderer) Render(ctx context.Context, kind string, record interface{}) ([]byte, error) {
	body, err := json.Marshal(map[string]interface{}{"kind": kind, "data": record})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	var pdf []byte
	err = r.cb.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/pdf")

		resp, err := r.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("renderer returned status %d", resp.StatusCode)
		}
		pdf, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, apperrors.Network(fmt.Errorf("render %s: %w", kind, err))
	}
	return pdf, nil
}
