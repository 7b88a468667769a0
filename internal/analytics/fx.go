package analytics

import (
	"github.com/promoforge/promoforge/internal/analytics/repository"
	"github.com/promoforge/promoforge/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
