package db

import (
	"fmt"
	"time"

	"github.com/gridspace-io/gridspace/internal/config"
	"github.com/gridspace-io/gridspace/internal/modules/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func New(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("database dsn is empty")
	}

	gormLog := logger.Default.LogMode(logger.Warn)
	if cfg.App.Env == "debug" {
		gormLog = logger.Default.LogMode(logger.Info)
	}

	d, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:         gormLog,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpen)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdle)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return d, nil
}

// Migrate creates or updates the schema for every persisted model.
func Migrate(d *gorm.DB) error {
	return d.AutoMigrate(
		&model.Workspace{},
		&model.WorkspaceMember{},
		&model.Table{},
		&model.Column{},
		&model.Row{},
		&model.Cell{},
		&model.Subscription{},
		&model.BillingEvent{},
	)
}
