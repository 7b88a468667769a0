package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertAdmin(ctx context.Context, db *gorm.DB, admin *Admin) error
	FindAdminByEmail(ctx context.Context, db *gorm.DB, email string) (*Admin, error)
	FindAdminByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Admin, error)
	InsertSession(ctx context.Context, db *gorm.DB, session *Session) error
	FindSessionByToken(ctx context.Context, db *gorm.DB, token string) (*Session, error)
	UpdateSessionCSRF(ctx context.Context, db *gorm.DB, sessionID snowflake.ID, csrfToken string) error
	DeleteSession(ctx context.Context, db *gorm.DB, token string) error
}
