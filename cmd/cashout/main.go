package main

import (
	"github.com/adlift/cashout/internal/clock"
	"github.com/adlift/cashout/internal/config"
	"github.com/adlift/cashout/internal/migration"
	"github.com/adlift/cashout/internal/server"
	"github.com/adlift/cashout/pkg/db"
	"github.com/adlift/cashout/pkg/log"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,

		fx.Invoke(func(s *server.Server) {
			s.RegisterRoutes()
		}),
		fx.Invoke(server.RunHTTP),
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
