package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/auth/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertAdmin(ctx context.Context, db *gorm.DB, admin *domain.Admin) error {
	return db.WithContext(ctx).Create(admin).Error
}

func (r *repo) FindAdminByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Admin, error) {
	var admin domain.Admin
	err := db.WithContext(ctx).Where("email = ?", email).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repo) FindAdminByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Admin, error) {
	var admin domain.Admin
	err := db.WithContext(ctx).Where("id = ?", id).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func (r *repo) InsertSession(ctx context.Context, db *gorm.DB, session *domain.Session) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindSessionByToken(ctx context.Context, db *gorm.DB, token string) (*domain.Session, error) {
	var session domain.Session
	err := db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repo) UpdateSessionCSRF(ctx context.Context, db *gorm.DB, sessionID snowflake.ID, csrfToken string) error {
	return db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ?", sessionID).
		Update("csrf_token", csrfToken).Error
}

func (r *repo) DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	return db.WithContext(ctx).Where("token = ?", token).Delete(&domain.Session{}).Error
}
