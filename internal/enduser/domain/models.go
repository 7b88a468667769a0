package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is a coupon recipient. Email is unique per tenant, so repeat
// signups fold into the existing record.
type User struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID  snowflake.ID `gorm:"not null;index;uniqueIndex:users_tenant_email" json:"tenant_id"`
	Email     string       `gorm:"not null;uniqueIndex:users_tenant_email" json:"email"`
	FirstName string       `gorm:"column:first_name" json:"first_name"`
	LastName  string       `gorm:"column:last_name" json:"last_name"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// CustomDatum is one answered custom form field for a user.
type CustomDatum struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID   snowflake.ID `gorm:"not null" json:"tenant_id"`
	UserID     snowflake.ID `gorm:"not null;index" json:"user_id"`
	FieldName  string       `gorm:"column:field_name;not null" json:"field_name"`
	FieldValue string       `gorm:"column:field_value" json:"field_value"`
}

func (CustomDatum) TableName() string { return "user_custom_data" }
