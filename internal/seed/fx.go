package seed

import (
	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("seed",
	fx.Invoke(run),
)

func run(cfg config.Config, db *gorm.DB, node *snowflake.Node, log *zap.Logger) error {
	if !cfg.SeedDemo {
		return nil
	}
	if err := EnsureDemoTenant(db, node); err != nil {
		return err
	}
	log.Info("demo tenant seeded", zap.String("slug", defaultTenantSlug))
	return nil
}
