package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/hostline/hostline/internal/clock"
	"github.com/hostline/hostline/internal/config"
	"github.com/hostline/hostline/internal/logger"
	"github.com/hostline/hostline/internal/migration"
	"github.com/hostline/hostline/internal/seed"
	"github.com/hostline/hostline/internal/server"
	"github.com/hostline/hostline/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
		fx.Invoke(seed.EnsureDemoCatalog),
	)
	app.Run()
}

// RegisterSnowflake provides the process-wide ID generator.
func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
