package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// TokenLength is the length of generated form-link tokens.
const TokenLength = 16

// MaxBatchSize bounds a single generation request.
const MaxBatchSize = 1000

// FormLink is a single-use signup token for a campaign. Tokens are
// unique across all tenants so a bare token resolves without a slug.
type FormLink struct {
	ID         snowflake.ID  `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID  `gorm:"not null;index" json:"tenant_id"`
	CampaignID snowflake.ID  `gorm:"not null;index" json:"campaign_id"`
	Token      string        `gorm:"not null;uniqueIndex" json:"token"`
	UsedAt     *time.Time    `gorm:"column:used_at" json:"used_at,omitempty"`
	CouponID   *snowflake.ID `gorm:"column:coupon_id" json:"coupon_id,omitempty"`
	CreatedAt  time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (FormLink) TableName() string { return "form_links" }

// Used reports whether the link has already been redeemed.
func (l *FormLink) Used() bool { return l.UsedAt != nil }

// Stats summarizes a campaign's link pool.
type Stats struct {
	Total     int64 `json:"total"`
	Used      int64 `json:"used"`
	Available int64 `json:"available"`
}
