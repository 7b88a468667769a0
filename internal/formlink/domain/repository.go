package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, link *FormLink) error
	ListByCampaign(ctx context.Context, db *gorm.DB, tenantID, campaignID snowflake.ID) ([]*FormLink, error)
	CountByCampaign(ctx context.Context, db *gorm.DB, tenantID, campaignID snowflake.ID) (total, used int64, err error)

	// FindByToken looks a link up across tenants. Tokens carry no slug.
	FindByToken(ctx context.Context, db *gorm.DB, token string) (*FormLink, error)

	// MarkUsed stamps used_at and coupon_id only when the link is still
	// unused, reporting whether the row changed.
	MarkUsed(ctx context.Context, db *gorm.DB, link *FormLink) (int64, error)
}
