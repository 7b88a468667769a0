package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/promoforge/promoforge/internal/clock"
	"github.com/promoforge/promoforge/internal/config"
	"github.com/promoforge/promoforge/internal/migration"
	"github.com/promoforge/promoforge/internal/observability"
	"github.com/promoforge/promoforge/internal/seed"
	"github.com/promoforge/promoforge/internal/server"
	"github.com/promoforge/promoforge/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		seed.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
