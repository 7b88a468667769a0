package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/formlink/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, link *domain.FormLink) error {
	return db.WithContext(ctx).Create(link).Error
}

func (r *repo) ListByCampaign(ctx context.Context, db *gorm.DB, tenantID, campaignID snowflake.ID) ([]*domain.FormLink, error) {
	var links []*domain.FormLink
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND campaign_id = ?", tenantID, campaignID).
		Order("created_at desc, id desc").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *repo) CountByCampaign(ctx context.Context, db *gorm.DB, tenantID, campaignID snowflake.ID) (int64, int64, error) {
	var total, used int64
	base := db.WithContext(ctx).Model(&domain.FormLink{}).
		Where("tenant_id = ? AND campaign_id = ?", tenantID, campaignID)

	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err := base.Session(&gorm.Session{}).Where("used_at IS NOT NULL").Count(&used).Error; err != nil {
		return 0, 0, err
	}
	return total, used, nil
}

func (r *repo) FindByToken(ctx context.Context, db *gorm.DB, token string) (*domain.FormLink, error) {
	var link domain.FormLink
	err := db.WithContext(ctx).
		Where("token = ?", token).
		First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *repo) MarkUsed(ctx context.Context, db *gorm.DB, link *domain.FormLink) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.FormLink{}).
		Where("id = ? AND used_at IS NULL", link.ID).
		Updates(map[string]interface{}{
			"used_at":   link.UsedAt,
			"coupon_id": link.CouponID,
		})
	return res.RowsAffected, res.Error
}
