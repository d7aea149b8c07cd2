// Package db provides the shared gorm connection used by every feature
// module. The relational store is the only shared mutable resource in the
// system; all cross-request consistency goes through its transactions.
package db

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/railzwaylabs/tably/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var Module = fx.Module("db",
	fx.Provide(New),
)

type Param struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
}

func New(p Param) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch p.Config.Database.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(p.Config.Database.DSN)
	case config.DriverSQLite:
		dialector = sqlite.Open(p.Config.Database.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", p.Config.Database.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(p.Config.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(p.Config.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	p.Log.Info("database connected", zap.String("driver", string(p.Config.Database.Driver)))
	return conn, nil
}
