package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateAdminRequest struct {
	TenantID snowflake.ID
	Email    string
	Password string
	Role     string
}

type LoginRequest struct {
	Email    string
	Password string
}

type LoginResult struct {
	Session  *Session
	Admin    *Admin
	RawToken string
}

type Service interface {
	CreateAdmin(context.Context, CreateAdminRequest) (*Admin, error)
	Login(context.Context, LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, *Admin, error)
	EnsureCSRF(ctx context.Context, session *Session) (string, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
	ErrAdminExists        = errors.New("admin_exists")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidPassword    = errors.New("invalid_password")
)
