package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/product/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]*domain.Product, error) {
	var products []*domain.Product
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at desc, id desc").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Save(product).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, tenantID, id snowflake.ID) (int64, error) {
	res := db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Delete(&domain.Product{})
	return res.RowsAffected, res.Error
}

// FilterOwned returns the subset of ids that belong to the tenant, in the
// order stored. Foreign ids are dropped silently.
func (r *repo) FilterOwned(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, ids []snowflake.ID) ([]snowflake.ID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var owned []snowflake.ID
	err := db.WithContext(ctx).Model(&domain.Product{}).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Pluck("id", &owned).Error
	if err != nil {
		return nil, err
	}
	return owned, nil
}
