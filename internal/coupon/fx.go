package coupon

import (
	"github.com/promoforge/promoforge/internal/coupon/repository"
	"github.com/promoforge/promoforge/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
