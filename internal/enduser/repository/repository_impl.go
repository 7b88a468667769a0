package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/enduser/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Save(user).Error
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, email string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, email).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*domain.User, error) {
	var users []*domain.User
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc, id desc").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repo) ReplaceCustomData(ctx context.Context, db *gorm.DB, userID snowflake.ID, data []domain.CustomDatum) error {
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&domain.CustomDatum{}).Error; err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&data).Error
}

func (r *repo) ListCustomData(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) ([]domain.CustomDatum, error) {
	var data []domain.CustomDatum
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		Order("field_name asc").
		Find(&data).Error
	if err != nil {
		return nil, err
	}
	return data, nil
}
