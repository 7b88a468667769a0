package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	Update(ctx context.Context, db *gorm.DB, user *User) error
	FindByEmail(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, email string) (*User, error)
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*User, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*User, error)

	ReplaceCustomData(ctx context.Context, db *gorm.DB, userID snowflake.ID, data []CustomDatum) error
	ListCustomData(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) ([]CustomDatum, error)
}
