package enduser

import (
	"github.com/promoforge/promoforge/internal/enduser/repository"
	"github.com/promoforge/promoforge/internal/enduser/service"
	"go.uber.org/fx"
)

var Module = fx.Module("enduser.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
