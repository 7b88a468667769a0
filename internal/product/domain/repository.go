package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*Product, error)
	List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error)
	FilterOwned(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ids []snowflake.ID) ([]snowflake.ID, error)
}
