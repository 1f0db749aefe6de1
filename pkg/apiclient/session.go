package apiclient

import (
	"context"
	"net/url"
	"time"
)

type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Login exchanges credentials for an access token and keeps it on the client.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var env Envelope[Session]
	err := c.Post(ctx, "auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &env)
	if err != nil {
		return Session{}, err
	}
	c.SetToken(env.Data.AccessToken)
	return env.Data, nil
}

// DocumentToken is a short-lived credential scoped to one generated document.
type DocumentToken struct {
	PDFToken  string    `json:"pdf_token"`
	ExpiresAt time.Time `json:"expires_at"`
	URL       string    `json:"url"`
}

// DocumentURL requests a pdf_token for kind/id and returns a URL that can be
// opened without the session credential.
func (c *Client) DocumentURL(ctx context.Context, kind, id string) (DocumentToken, error) {
	var env Envelope[DocumentToken]
	path := "documents/" + url.PathEscape(kind) + "/" + url.PathEscape(id) + "/token"
	if err := c.Post(ctx, path, nil, &env); err != nil {
		return DocumentToken{}, err
	}

	tok := env.Data
	tok.URL = c.URL(
		"documents/"+url.PathEscape(kind)+"/"+url.PathEscape(id)+"/pdf",
		url.Values{"pdf_token": {tok.PDFToken}},
	)
	return tok, nil
}
