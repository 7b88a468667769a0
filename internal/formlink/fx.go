package formlink

import (
	"github.com/promoforge/promoforge/internal/formlink/repository"
	"github.com/promoforge/promoforge/internal/formlink/service"
	"go.uber.org/fx"
)

var Module = fx.Module("formlink.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
