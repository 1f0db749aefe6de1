package model

import "time"

const (
	UserRoleAdmin     = "admin"
	UserRoleClinician = "clinician"
)

// User is an operator of the admin
type User struct {
	Base
	Email        string     `json:"email" db:"email"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         string     `json:"role" db:"role"`
	LastLoginAt  *time.Time `json:"last_login_at" db:"last_login_at"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}
