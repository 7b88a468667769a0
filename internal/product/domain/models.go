package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Product carries the representative value and margin used by campaign
// estimation. Campaigns borrow an average over their attached products;
// a product is never sold through this system directly.
type Product struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID    snowflake.ID `gorm:"not null;index;uniqueIndex:products_tenant_sku" json:"tenant_id"`
	Name        string       `gorm:"not null" json:"name"`
	Value       float64      `gorm:"not null" json:"value"`
	MarginPrice float64      `gorm:"column:margin_price;not null" json:"margin_price"`
	SKU         string       `gorm:"column:sku;not null;uniqueIndex:products_tenant_sku" json:"sku"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// CampaignProduct links a campaign to one of its representative products.
type CampaignProduct struct {
	CampaignID snowflake.ID `gorm:"primaryKey" json:"campaign_id"`
	ProductID  snowflake.ID `gorm:"primaryKey" json:"product_id"`
}
