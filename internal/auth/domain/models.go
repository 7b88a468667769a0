package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Admin is an operator account bound to one tenant.
type Admin struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	TenantID     snowflake.ID `gorm:"not null;index" json:"tenant_id"`
	Email        string       `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Role         string       `gorm:"not null;default:admin" json:"role"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Session is a server-side login session. The raw token is handed to the
// client as a cookie; the CSRF token is issued separately and must accompany
// mutating requests.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Token     string       `gorm:"not null;uniqueIndex" json:"-"`
	AdminID   snowflake.ID `gorm:"not null" json:"admin_id"`
	TenantID  snowflake.ID `gorm:"not null" json:"tenant_id"`
	CSRFToken string       `gorm:"column:csrf_token" json:"-"`
	ExpiresAt time.Time    `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}
