package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/optica-admin/internal/model"
	pkgauth "github.com/jwalitptl/optica-admin/pkg/auth"
	apperrors "github.com/jwalitptl/optica-admin/pkg/errors"
	"github.com/jwalitptl/optica-admin/pkg/security"
)

type fakeUsers struct {
	user    *model.User
	touched bool
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, apperrors.NotFound("user", nil)
	}
	return f.user, nil
}

func (f *fakeUsers) TouchLogin(context.Context, int64, time.Time) error {
	f.touched = true
	return nil
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	if f.user != nil && f.user.Email == u.Email {
		return apperrors.FieldError("email", "The email has already been taken.")
	}
	u.ID = 1
	f.user = u
	return nil
}

func TestLogin(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)

	users := &fakeUsers{user: &model.User{Base: model.Base{ID: 7}, Email: "admin@optica.test", PasswordHash: hash, Role: model.UserRoleAdmin}}
	jwt := pkgauth.NewJWTManager(pkgauth.Config{Secret: "s"})
	svc := NewService(users, hasher, jwt, zerolog.Nop())

	resp, err := svc.Login(context.Background(), model.LoginRequest{Email: "admin@optica.test", Password: "correct-horse"})
	require.NoError(t, err)
	assert.True(t, users.touched)

	claims, err := jwt.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, model.UserRoleAdmin, claims.Role)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("correct-horse")
	require.NoError(t, err)
	users := &fakeUsers{user: &model.User{Base: model.Base{ID: 7}, Email: "admin@optica.test", PasswordHash: hash}}
	svc := NewService(users, hasher, pkgauth.NewJWTManager(pkgauth.Config{Secret: "s"}), zerolog.Nop())

	for _, req := range []model.LoginRequest{
		{Email: "admin@optica.test", Password: "wrong-horse"},
		{Email: "nobody@optica.test", Password: "correct-horse"},
	} {
		_, err := svc.Login(context.Background(), req)
		appErr, ok := apperrors.As(err)
		require.True(t, ok)
		assert.Equal(t, "These credentials do not match our records.", appErr.FirstMessage("email"))
	}
	assert.False(t, users.touched)
}

func TestRegisterThenLogin(t *testing.T) {
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	users := &fakeUsers{}
	svc := NewService(users, hasher, pkgauth.NewJWTManager(pkgauth.Config{Secret: "s"}), zerolog.Nop())
	ctx := context.Background()

	user, err := svc.Register(ctx, " Admin@Optica.test ", "Admin", "correct-horse", model.UserRoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "admin@optica.test", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "admin@optica.test", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, "admin@optica.test", "Again", "correct-horse", model.UserRoleAdmin)
	assert.True(t, apperrors.IsValidation(err))
	_, err = svc.Register(ctx, "x@optica.test", "X", "correct-horse", "root")
	assert.True(t, apperrors.IsValidation(err))
	_, err = svc.Register(ctx, "y@optica.test", "Y", "short", model.UserRoleClinician)
	assert.True(t, apperrors.IsValidation(err))
}
