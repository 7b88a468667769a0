package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/promoforge/promoforge/internal/auth/domain"
	"github.com/promoforge/promoforge/internal/auth/password"
	tenantdomain "github.com/promoforge/promoforge/internal/tenant/domain"
	"gorm.io/gorm"
)

const (
	defaultTenantName  = "Demo Merchant"
	defaultTenantSlug  = "demo"
	defaultAdminEmail  = "admin@promoforge.local"
	defaultAdminSecret = "changeme123"
)

// EnsureDemoTenant seeds a demo tenant with one admin so a fresh
// install is usable without the signup flow. Idempotent.
func EnsureDemoTenant(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if node == nil {
		return errors.New("seed id generator is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := ensureTenantTx(ctx, tx, node)
		if err != nil {
			return err
		}
		return ensureAdminTx(ctx, tx, node, tenant.ID)
	})
}

func ensureTenantTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node) (*tenantdomain.Tenant, error) {
	var tenant tenantdomain.Tenant
	err := tx.WithContext(ctx).
		Where("slug = ?", defaultTenantSlug).
		First(&tenant).Error
	if err == nil {
		return &tenant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	tenant = tenantdomain.Tenant{
		ID:        node.Generate(),
		Slug:      defaultTenantSlug,
		Name:      defaultTenantName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&tenant).Error; err != nil {
		return nil, err
	}
	return &tenant, nil
}

func ensureAdminTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, tenantID snowflake.ID) error {
	var admin authdomain.Admin
	err := tx.WithContext(ctx).
		Where("email = ?", defaultAdminEmail).
		First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := password.Hash(defaultAdminSecret)
	if err != nil {
		return err
	}

	admin = authdomain.Admin{
		ID:           node.Generate(),
		TenantID:     tenantID,
		Email:        strings.ToLower(defaultAdminEmail),
		PasswordHash: hashed,
		Role:         authdomain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	return tx.WithContext(ctx).Create(&admin).Error
}
