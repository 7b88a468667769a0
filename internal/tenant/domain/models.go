package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tenant is an isolated merchant account and the root of data partitioning.
// Every tenant-scoped entity carries its id as a foreign key.
type Tenant struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	Slug          string       `gorm:"not null;uniqueIndex" json:"slug"`
	Name          string       `gorm:"not null" json:"name"`
	EmailFromName string       `gorm:"column:email_from_name" json:"email_from_name,omitempty"`
	MailgunDomain string       `gorm:"column:mailgun_domain" json:"mailgun_domain,omitempty"`
	CreatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}
