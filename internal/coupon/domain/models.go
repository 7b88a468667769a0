package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusActive   = "active"
	StatusRedeemed = "redeemed"
	StatusExpired  = "expired"
)

// CodeLength is the length of generated coupon codes.
const CodeLength = 12

// Coupon is an issued discount. discount_type and discount_value are
// snapshots taken at issuance, so later campaign edits do not alter
// coupons already in the wild.
type Coupon struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID      snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	CampaignID    snowflake.ID `gorm:"not null;index" json:"campaign_id"`
	UserID        snowflake.ID `gorm:"not null" json:"user_id"`
	Code          string       `gorm:"not null;uniqueIndex" json:"code"`
	DiscountType  string       `gorm:"column:discount_type;not null" json:"discount_type"`
	DiscountValue float64      `gorm:"column:discount_value;not null" json:"discount_value"`
	Status        string       `gorm:"not null;default:active" json:"status"`
	IssuedAt      time.Time    `gorm:"column:issued_at;not null" json:"issued_at"`
	RedeemedAt    *time.Time   `gorm:"column:redeemed_at" json:"redeemed_at,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
