package db

import (
	"fmt"

	"crosspay-backend/internal/config"
	"crosspay-backend/internal/metrics"
	"crosspay-backend/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init opens the database connection and migrates the schema. The handle is
// returned to the caller and injected into repositories; no package-level
// connection state is kept.
func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	gdb, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		metrics.DBConnectionStatus.Set(0)
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	logrus.Info("✅ Database connected successfully")
	metrics.DBConnectionStatus.Set(1)

	if err := Migrate(gdb); err != nil {
		return nil, err
	}

	return gdb, nil
}

// Migrate runs schema auto-migration for all models
func Migrate(gdb *gorm.DB) error {
	logrus.Info("🚀 Starting database schema migration with GORM AutoMigrate...")

	if err := gdb.AutoMigrate(
		&models.PaymentLink{},
		&models.PaymentAttempt{},
		&models.Transaction{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}

	logrus.Info("✅ Database schema migrated successfully")
	return nil
}
