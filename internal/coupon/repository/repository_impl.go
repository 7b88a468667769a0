package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/coupon/domain"
	"github.com/promoforge/promoforge/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, coupon *domain.Coupon) error {
	return db.WithContext(ctx).Create(coupon).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Coupon, error) {
	var coupon domain.Coupon
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&coupon).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID, campaignID snowflake.ID, cursor *pagination.Cursor, limit int) ([]*domain.Coupon, error) {
	q := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("id desc").
		Limit(limit + 1)

	if campaignID != 0 {
		q = q.Where("campaign_id = ?", campaignID)
	}
	if cursor != nil && cursor.ID != "" {
		q = q.Where("id < ?", cursor.ID)
	}

	var coupons []*domain.Coupon
	if err := q.Find(&coupons).Error; err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *repo) ListByCampaign(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*domain.Coupon, error) {
	var coupons []*domain.Coupon
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("issued_at asc, id asc").
		Find(&coupons).Error
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&domain.Coupon{})
	return res.RowsAffected, res.Error
}

func (r *repo) MarkRedeemed(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, at time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.Coupon{}).
		Where("tenant_id = ? AND id = ? AND status = ?", tenantID, id, domain.StatusActive).
		Updates(map[string]interface{}{
			"status":      domain.StatusRedeemed,
			"redeemed_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) SettleExpiry(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Exec(`
		UPDATE coupons SET status = ?
		WHERE tenant_id = ? AND status = ?
		  AND campaign_id IN (
			SELECT id FROM campaigns
			WHERE tenant_id = ? AND coupon_expiry_date IS NOT NULL AND coupon_expiry_date < ?
		  )`,
		domain.StatusExpired, tenantID, domain.StatusActive, tenantID, now)
	return res.RowsAffected, res.Error
}
