package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Campaign, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*Campaign, error)
	Save(ctx context.Context, db *gorm.DB, campaign *Campaign) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error)

	// SetActive flips is_active only when the stored flag differs,
	// reporting whether a row changed.
	SetActive(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, active bool, now time.Time) (int64, error)

	// SettleExpiry deactivates active campaigns whose expiry_date is in
	// the past and returns the affected ids.
	SettleExpiry(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, now time.Time) ([]snowflake.ID, error)

	ReplaceProducts(ctx context.Context, db *gorm.DB, campaignID snowflake.ID, productIDs []snowflake.ID) error
	ListProductIDs(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) ([]snowflake.ID, error)
}
