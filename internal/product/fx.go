package product

import (
	"github.com/promoforge/promoforge/internal/product/repository"
	"github.com/promoforge/promoforge/internal/product/service"
	"go.uber.org/fx"
)

var Module = fx.Module("product.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
