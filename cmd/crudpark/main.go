package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/crudpark/internal/cache"
	"github.com/smallbiznis/crudpark/internal/clock"
	"github.com/smallbiznis/crudpark/internal/config"
	"github.com/smallbiznis/crudpark/internal/migration"
	"github.com/smallbiznis/crudpark/internal/observability"
	"github.com/smallbiznis/crudpark/internal/operator"
	"github.com/smallbiznis/crudpark/internal/payment"
	"github.com/smallbiznis/crudpark/internal/receipt"
	"github.com/smallbiznis/crudpark/internal/server"
	"github.com/smallbiznis/crudpark/internal/subscription"
	"github.com/smallbiznis/crudpark/internal/tariff"
	"github.com/smallbiznis/crudpark/internal/ticket"
	"github.com/smallbiznis/crudpark/pkg/db"
	"go.uber.org/fx"
	_ "time/tzdata"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		cache.Module,

		// Parking domains
		operator.Module,
		subscription.Module,
		payment.Module,
		tariff.Module,
		receipt.Module,
		ticket.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
