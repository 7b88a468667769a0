package domain

import (
	"context"
	"errors"
	"time"
)

// CreateCampaignRequest carries the admin-facing creation payload. The
// campaign code is generated server side and campaigns start inactive.
type CreateCampaignRequest struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	DiscountType     string     `json:"discount_type"`
	DiscountValue    float64    `json:"discount_value"`
	ExpiryDate       *time.Time `json:"expiry_date"`
	CouponExpiryDate *time.Time `json:"coupon_expiry_date"`
}

// UpdateCampaignRequest updates mutable campaign fields. Nil pointers
// leave the current value untouched.
type UpdateCampaignRequest struct {
	ID               string     `json:"-"`
	Name             *string    `json:"name"`
	Description      *string    `json:"description"`
	DiscountType     *string    `json:"discount_type"`
	DiscountValue    *float64   `json:"discount_value"`
	ExpiryDate       *time.Time `json:"expiry_date"`
	CouponExpiryDate *time.Time `json:"coupon_expiry_date"`
}

type Service interface {
	Create(ctx context.Context, req CreateCampaignRequest) (Campaign, error)
	Update(ctx context.Context, req UpdateCampaignRequest) (Campaign, error)
	GetByID(ctx context.Context, id string) (Campaign, error)
	List(ctx context.Context) ([]Campaign, error)
	Delete(ctx context.Context, id string) error

	Activate(ctx context.Context, id string) (Campaign, error)
	Deactivate(ctx context.Context, id string) (Campaign, error)

	SetFormConfig(ctx context.Context, id string, cfg FormConfig) (Campaign, error)
	GetCustomFields(ctx context.Context, id string) ([]CustomField, error)
	SetCustomFields(ctx context.Context, id string, fields []CustomField) ([]CustomField, error)

	SetProducts(ctx context.Context, id string, productIDs []string) ([]string, error)
	ListProducts(ctx context.Context, id string) ([]string, error)

	// SettleExpiry deactivates every active campaign of the tenant whose
	// expiry date has passed. Called lazily from reads.
	SettleExpiry(ctx context.Context) error
}

var (
	ErrNotFound            = errors.New("campaign_not_found")
	ErrInvalidID           = errors.New("invalid_campaign_id")
	ErrInvalidTenant       = errors.New("invalid_tenant")
	ErrInvalidName         = errors.New("invalid_campaign_name")
	ErrInvalidDiscountType = errors.New("invalid_discount_type")
	ErrInvalidDiscount     = errors.New("invalid_discount_value")
	ErrInvalidExpiry       = errors.New("invalid_expiry_date")
	ErrCodeConflict        = errors.New("campaign_code_conflict")
	ErrCampaignExpired     = errors.New("campaign_expired")
	ErrCampaignInactive    = errors.New("campaign_inactive")
	ErrInvalidProductID    = errors.New("invalid_product_id")
)
