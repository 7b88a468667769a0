package domain

import (
	"context"
	"errors"
)

type CreateProductRequest struct {
	Name        string
	Value       float64
	MarginPrice float64
	SKU         string
}

type UpdateProductRequest struct {
	ID          string
	Name        *string
	Value       *float64
	MarginPrice *float64
	SKU         *string
}

type Service interface {
	Create(context.Context, CreateProductRequest) (Product, error)
	Update(context.Context, UpdateProductRequest) (Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidTenant = errors.New("invalid_tenant")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidValue  = errors.New("invalid_value")
	ErrInvalidSKU    = errors.New("invalid_sku")
	ErrInvalidID     = errors.New("invalid_id")
	ErrSKUConflict   = errors.New("sku_conflict")
	ErrNotFound      = errors.New("not_found")
)
