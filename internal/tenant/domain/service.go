package domain

import (
	"context"
	"errors"
)

type CreateTenantRequest struct {
	Name          string
	EmailFromName string
	MailgunDomain string
}

type UpdateTenantRequest struct {
	ID            string
	Name          *string
	EmailFromName *string
	MailgunDomain *string
}

type Service interface {
	Create(context.Context, CreateTenantRequest) (Tenant, error)
	ResolveSlug(context.Context, string) (Tenant, error)
	GetByID(context.Context, string) (Tenant, error)
	Update(context.Context, UpdateTenantRequest) (Tenant, error)
}

var (
	ErrInvalidName = errors.New("invalid_name")
	ErrInvalidID   = errors.New("invalid_id")
	ErrNotFound    = errors.New("not_found")
)
