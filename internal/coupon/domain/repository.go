package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, coupon *Coupon) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Coupon, error)
	List(ctx context.Context, db *gorm.DB, tenantID, campaignID snowflake.ID, cursor *pagination.Cursor, limit int) ([]*Coupon, error)
	ListByCampaign(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*Coupon, error)
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error)

	// MarkRedeemed flips status to redeemed only while it is active,
	// reporting whether the row changed.
	MarkRedeemed(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, at time.Time) (int64, error)

	// SettleExpiry expires active coupons of campaigns whose coupon
	// expiry date is in the past.
	SettleExpiry(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, now time.Time) (int64, error)
}
