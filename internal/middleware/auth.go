package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/optica-admin/pkg/auth"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/httputil"
)

const ContextClaims = "claims"

type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	tokens TokenValidator
}

func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate verifies the bearer token and stores its claims in the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.RespondWithError(c, unauthenticated("Unauthenticated."))
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			httputil.RespondWithError(c, unauthenticated("Invalid authorization header."))
			return
		}

		claims, err := m.tokens.ValidateAccessToken(token)
		if err != nil {
			appErr := unauthenticated("Unauthenticated.")
			appErr.Err = err
			httputil.RespondWithError(c, appErr)
			return
		}

		c.Set(ContextClaims, claims)
		c.Next()
	}
}

// ClaimsFrom returns the claims set by Authenticate.
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func unauthenticated(msg string) *apperrors.AppError {
	appErr := apperrors.Unauthorized(nil)
	appErr.Message = msg
	return appErr
}
