package tenant

import (
	"github.com/promoforge/promoforge/internal/tenant/repository"
	"github.com/promoforge/promoforge/internal/tenant/service"
	"go.uber.org/fx"
)

var Module = fx.Module("tenant.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
