package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/campaign/domain"
	productdomain "github.com/promoforge/promoforge/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Create(campaign).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &campaign, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*domain.Campaign, error) {
	var campaigns []*domain.Campaign
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc, id desc").
		Find(&campaigns).Error
	if err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, campaign *domain.Campaign) error {
	return db.WithContext(ctx).Save(campaign).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&domain.Campaign{})
	return res.RowsAffected, res.Error
}

func (r *repo) SetActive(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID, active bool, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Model(&domain.Campaign{}).
		Where("tenant_id = ? AND id = ? AND is_active = ?", tenantID, id, !active).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *repo) SettleExpiry(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, now time.Time) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Model(&domain.Campaign{}).
		Where("tenant_id = ? AND is_active = ? AND expiry_date IS NOT NULL AND expiry_date < ?", tenantID, true, now).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	err = db.WithContext(ctx).Model(&domain.Campaign{}).
		Where("tenant_id = ? AND id IN ? AND is_active = ?", tenantID, ids, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": now,
		}).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) ReplaceProducts(ctx context.Context, db *gorm.DB, campaignID snowflake.ID, productIDs []snowflake.ID) error {
	if err := db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Delete(&productdomain.CampaignProduct{}).Error; err != nil {
		return err
	}
	if len(productIDs) == 0 {
		return nil
	}

	links := make([]productdomain.CampaignProduct, 0, len(productIDs))
	for _, pid := range productIDs {
		links = append(links, productdomain.CampaignProduct{
			CampaignID: campaignID,
			ProductID:  pid,
		})
	}
	return db.WithContext(ctx).Create(&links).Error
}

func (r *repo) ListProductIDs(ctx context.Context, db *gorm.DB, campaignID snowflake.ID) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Model(&productdomain.CampaignProduct{}).
		Where("campaign_id = ?", campaignID).
		Order("product_id asc").
		Pluck("product_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
