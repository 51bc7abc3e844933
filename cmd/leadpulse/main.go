package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/propelre/leadpulse/internal/catalog"
	"github.com/propelre/leadpulse/internal/clock"
	"github.com/propelre/leadpulse/internal/config"
	"github.com/propelre/leadpulse/internal/contact"
	"github.com/propelre/leadpulse/internal/logger"
	"github.com/propelre/leadpulse/internal/matching"
	"github.com/propelre/leadpulse/internal/migration"
	"github.com/propelre/leadpulse/internal/scheduler"
	"github.com/propelre/leadpulse/internal/scoring"
	"github.com/propelre/leadpulse/internal/server"
	"github.com/propelre/leadpulse/internal/signal"
	"github.com/propelre/leadpulse/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		clock.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Functional domains
		contact.Module,
		signal.Module,
		catalog.Module,
		scoring.Module,
		matching.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
