package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// UpsertUserRequest carries the signup form payload. Custom holds the
// campaign-defined fields keyed by field name.
type UpsertUserRequest struct {
	TenantID  snowflake.ID
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Custom    map[string]string
}

type Service interface {
	// Upsert creates the user or refreshes the existing record matched
	// by tenant and email, replacing its custom data. Runs on tx so
	// callers can fold it into a larger transaction.
	Upsert(ctx context.Context, tx *gorm.DB, req UpsertUserRequest) (User, error)

	GetByID(ctx context.Context, id string) (User, []CustomDatum, error)
	List(ctx context.Context) ([]User, error)
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrInvalidID     = errors.New("invalid_user_id")
	ErrNotFound      = errors.New("user_not_found")
)
