package migration

import (
	auditdomain "github.com/railzwaylabs/tably/internal/audit/domain"
	"github.com/railzwaylabs/tably/internal/config"
	invoicedomain "github.com/railzwaylabs/tably/internal/invoice/domain"
	menudomain "github.com/railzwaylabs/tably/internal/menu/domain"
	orderdomain "github.com/railzwaylabs/tably/internal/order/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(cfg config.Config, conn *gorm.DB, log *zap.Logger) error {
		// SQLite is a local-development convenience; the declarative
		// schema is authoritative for postgres deployments.
		if cfg.Database.Driver == config.DriverSQLite {
			if err := conn.AutoMigrate(
				&menudomain.Dish{},
				&orderdomain.Order{},
				&orderdomain.OrderItem{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceLineItem{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
			return conn.Exec(
				`CREATE UNIQUE INDEX IF NOT EXISTS uniq_orders_open_table
				 ON orders (hotel_id, table_number) WHERE status = 'open'`,
			).Error
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}

		version, _ := LatestMigrationVersion()
		checksum, _ := MigrationsChecksum()
		log.Info("migrations applied",
			zap.Uint("version", version),
			zap.String("checksum", checksum))
		return nil
	}),
)
