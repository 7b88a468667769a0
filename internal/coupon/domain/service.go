package domain

import (
	"context"
	"errors"

	enduserdomain "github.com/promoforge/promoforge/internal/enduser/domain"
	"github.com/promoforge/promoforge/pkg/db/pagination"
)

// RedeemLinkRequest is the public signup payload attached to a
// form-link token.
type RedeemLinkRequest struct {
	Token     string            `json:"token"`
	Email     string            `json:"email"`
	FirstName string            `json:"first_name"`
	LastName  string            `json:"last_name"`
	Phone     string            `json:"phone"`
	Address   string            `json:"address"`
	Custom    map[string]string `json:"custom"`
}

// RedeemLinkResult is what the public endpoint returns.
type RedeemLinkResult struct {
	Coupon Coupon             `json:"coupon"`
	User   enduserdomain.User `json:"user"`
}

// ListResult is one page of coupons.
type ListResult struct {
	Coupons  []Coupon            `json:"coupons"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	// RedeemLink consumes a single-use form link: it validates the
	// campaign, upserts the end user and issues exactly one coupon.
	RedeemLink(ctx context.Context, req RedeemLinkRequest) (RedeemLinkResult, error)

	// Redeem marks an active coupon redeemed.
	Redeem(ctx context.Context, id string) (Coupon, error)

	GetByID(ctx context.Context, id string) (Coupon, error)
	List(ctx context.Context, campaignID string, page pagination.Pagination) (ListResult, error)
	Delete(ctx context.Context, id string) error

	// SettleExpiry expires active coupons whose campaign's coupon
	// expiry date has passed. Called lazily from reads.
	SettleExpiry(ctx context.Context) error
}

var (
	ErrInvalidTenant     = errors.New("invalid_tenant")
	ErrInvalidID         = errors.New("invalid_coupon_id")
	ErrNotFound          = errors.New("coupon_not_found")
	ErrLinkNotFound      = errors.New("form_link_not_found")
	ErrLinkUsed          = errors.New("form_link_already_used")
	ErrCampaignInactive  = errors.New("campaign_inactive")
	ErrCampaignExpired   = errors.New("campaign_expired")
	ErrMissingField      = errors.New("missing_required_field")
	ErrAlreadyRedeemed   = errors.New("coupon_already_redeemed")
	ErrCouponExpired     = errors.New("coupon_expired")
	ErrCodeGeneration    = errors.New("coupon_code_generation_failed")
	ErrInvalidPageToken  = errors.New("invalid_page_token")
	ErrInvalidCampaignID = errors.New("invalid_campaign_id")
)
