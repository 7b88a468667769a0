package campaign

import (
	"github.com/promoforge/promoforge/internal/campaign/repository"
	"github.com/promoforge/promoforge/internal/campaign/service"
	"go.uber.org/fx"
)

var Module = fx.Module("campaign.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
