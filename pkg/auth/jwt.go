package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type tokenType string

const (
	accessTokenType   tokenType = "access"
	documentTokenType tokenType = "document"
)

var (
	ErrTokenExpired      = errors.New("token has expired")
	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenTypeMismatch = errors.New("wrong token type")
	ErrDocumentMismatch  = errors.New("token was issued for another document")
)

type Config struct {
	Secret           string        `mapstructure:"secret"`
	Issuer           string        `mapstructure:"issuer"`
	AccessTokenTTL   time.Duration `mapstructure:"access_token_ttl"`
	DocumentTokenTTL time.Duration `mapstructure:"document_token_ttl"`
}

// Claims identifies the operator behind a request.
type Claims struct {
	UserID int64
	Email  string
	Role   string
}

type adminClaims struct {
	jwt.RegisteredClaims
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	TokenType    tokenType `json:"token_type"`
	DocumentKind string    `json:"doc_kind,omitempty"`
	DocumentID   string    `json:"doc_id,omitempty"`
}

type JWTManager struct {
	cfg Config
	now func() time.Time
}

func NewJWTManager(cfg Config) *JWTManager {
	if cfg.AccessTokenTTL <= 0 {
		cfg.AccessTokenTTL = 12 * time.Hour
	}
	if cfg.DocumentTokenTTL <= 0 {
		cfg.DocumentTokenTTL = 5 * time.Minute
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "optica-admin"
	}
	return &JWTManager{cfg: cfg, now: time.Now}
}

// GenerateAccessToken issues the bearer token used on every API call.
func (m *JWTManager) GenerateAccessToken(claims Claims) (string, time.Time, error) {
	token, expiresAt, err := m.generate(claims, adminClaims{TokenType: accessTokenType}, m.cfg.AccessTokenTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generating access token: %w", err)
	}
	return token, expiresAt, nil
}

// GenerateDocumentToken issues a short-lived token that only opens the
// document kind/id. It is passed as ?pdf_token= so browsers can download
// without the session header.
func (m *JWTManager) GenerateDocumentToken(claims Claims, kind, id string) (string, time.Time, error) {
	token, expiresAt, err := m.generate(claims, adminClaims{
		TokenType:    documentTokenType,
		DocumentKind: kind,
		DocumentID:   id,
	}, m.cfg.DocumentTokenTTL)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generating document token: %w", err)
	}
	return token, expiresAt, nil
}

func (m *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	c, err := m.validate(tokenString, accessTokenType)
	if err != nil {
		return nil, err
	}
	return toClaims(c)
}

// ValidateDocumentToken accepts only a document token minted for kind/id.
func (m *JWTManager) ValidateDocumentToken(tokenString, kind, id string) (*Claims, error) {
	c, err := m.validate(tokenString, documentTokenType)
	if err != nil {
		return nil, err
	}
	if c.DocumentKind != kind || c.DocumentID != id {
		return nil, ErrDocumentMismatch
	}
	return toClaims(c)
}

func (m *JWTManager) generate(claims Claims, extra adminClaims, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(ttl)

	extra.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    m.cfg.Issuer,
		Subject:   strconv.FormatInt(claims.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		NotBefore: jwt.NewNumericDate(now.Add(-10 * time.Second)),
	}
	extra.Email = claims.Email
	extra.Role = claims.Role

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, extra)
	signed, err := token.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *JWTManager) validate(tokenString string, expected tokenType) (*adminClaims, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&adminClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.cfg.Secret), nil
		},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*adminClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != expected {
		return nil, ErrTokenTypeMismatch
	}
	return claims, nil
}

func toClaims(c *adminClaims) (*Claims, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	return &Claims{UserID: id, Email: c.Email, Role: c.Role}, nil
}
