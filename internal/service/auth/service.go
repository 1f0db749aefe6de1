package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/optica-admin/internal/model"
	"github.com/jwalitptl/optica-admin/internal/repository"
	pkgauth "github.com/jwalitptl/optica-admin/pkg/auth"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/security"
)

const badCredentials = "These credentials do not match our records."

type TokenIssuer interface {
	GenerateAccessToken(claims pkgauth.Claims) (string, time.Time, error)
}

type Service struct {
	users  repository.UserRepository
	hasher security.PasswordHasher
	tokens TokenIssuer
	logger zerolog.Logger
}

func NewService(users repository.UserRepository, hasher security.PasswordHasher, tokens TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

// Login checks the password and issues an access token. Unknown e-mails and
// wrong passwords get the same 422 on email.
func (s *Service) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.FieldError("email", badCredentials)
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		if !errors.Is(err, security.ErrMismatch) {
			s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("Stored password hash is unreadable")
		}
		return nil, apperrors.FieldError("email", badCredentials)
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(pkgauth.Claims{UserID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.users.TouchLogin(ctx, user.ID, time.Now()); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to record login time")
	}
	return &model.LoginResponse{AccessToken: token, ExpiresAt: expiresAt}, nil
}

// Register creates an operator account. It backs the create-user command.
func (s *Service) Register(ctx context.Context, email, name, password, role string) (*model.User, error) {
	if role != model.UserRoleAdmin && role != model.UserRoleClinician {
		return nil, apperrors.FieldError("role", "The selected role is invalid.")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.FieldError("password", "The password must be at least 8 characters.")
		}
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
