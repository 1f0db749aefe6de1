package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
)

const (
	DefaultTimeout = 30 * time.Second
	DefaultRate    = 20
	DefaultBurst   = 10
	APIPrefix      = "/api/v1"
)

type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"`
	Burst     int           `mapstructure:"burst"`
}

// Client talks to the admin REST backend. It never retries on its own and
// every failure it returns is an *apperrors.AppError.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	group      singleflight.Group
	logger     zerolog.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:     zerolog.Nop(),
		token:      cfg.Token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// URL returns the absolute URL of path under the API prefix.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + APIPrefix + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Get decodes the body of a GET into out. Identical GETs issued while one
// is in flight share its response. The shared request does not follow any
// single caller's cancellation; each caller stops waiting on its own ctx and
// the request is bounded by the client timeout.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.URL(path, query)
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(target, func() (any, error) {
		return c.send(shared, http.MethodGet, target, nil)
	})

	select {
	case <-ctx.Done():
		return apperrors.Network(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return decode(res.Val.([]byte), out)
	}
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return apperrors.BadRequest("request body could not be encoded", err)
		}
	}
	raw, err := c.send(ctx, method, c.URL(path, nil), payload)
	if err != nil {
		return err
	}
	return decode(raw, out)
}

func (c *Client) send(ctx context.Context, method, target string, payload []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, apperrors.Network(err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, apperrors.Network(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("url", target).Msg("request failed")
		return nil, apperrors.Network(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Network(err)
	}
	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, Classify(resp.StatusCode, raw)
	}
	return raw, nil
}

func decode(raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		appErr := apperrors.Server(http.StatusOK, fmt.Sprintf("unexpected response body: %v", err))
		appErr.Err = err
		return appErr
	}
	return nil
}
