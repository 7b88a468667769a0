package auth

import (
	"github.com/promoforge/promoforge/internal/auth/repository"
	"github.com/promoforge/promoforge/internal/auth/service"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
