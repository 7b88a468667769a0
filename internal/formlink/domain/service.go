package domain

import (
	"context"
	"errors"

	campaigndomain "github.com/promoforge/promoforge/internal/campaign/domain"
)

// FormView is the public shape of the signup form behind a token. It
// exposes only what the end user needs, never tenant internals.
type FormView struct {
	CampaignName  string                    `json:"campaign_name"`
	Description   string                    `json:"description,omitempty"`
	DiscountType  string                    `json:"discount_type"`
	DiscountValue float64                   `json:"discount_value"`
	FormConfig    campaigndomain.FormConfig `json:"form_config"`
}

type Service interface {
	// GenerateLinks mints count single-use tokens for the campaign.
	GenerateLinks(ctx context.Context, campaignID string, count int) ([]FormLink, error)

	// ListLinks returns the campaign's links plus pool statistics.
	ListLinks(ctx context.Context, campaignID string) ([]FormLink, Stats, error)

	// ResolveToken is the public lookup behind the signup form. Tokens
	// for inactive or expired campaigns read as absent.
	ResolveToken(ctx context.Context, token string) (FormView, error)
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidCampaignID = errors.New("invalid_campaign_id")
	ErrCampaignNotFound  = errors.New("campaign_not_found")
	ErrInvalidCount      = errors.New("invalid_link_count")
	ErrTokenGeneration   = errors.New("token_generation_failed")
	ErrTokenNotFound     = errors.New("token_not_found")
	ErrTokenUsed         = errors.New("token_already_used")
)
