package migration

import (
	"context"

	"github.com/smallbiznis/crudpark/internal/config"
	"github.com/smallbiznis/crudpark/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.IsSQLite() {
			if err := ApplySQLite(context.Background(), conn); err != nil {
				return err
			}
		} else {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		}

		if cfg.BootstrapDefaults {
			return seed.EnsureDefaults(conn, cfg.NodeID)
		}
		return nil
	}),
)
