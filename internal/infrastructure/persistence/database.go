package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/persistence/models"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Database holds the journal database connection
type Database struct {
	DB *gorm.DB
}

// Options tune the connection
type Options struct {
	LogLevel      string
	SlowThreshold time.Duration
	// Tracing registers the otelgorm plugin so journal writes show up in traces
	Tracing bool
}

// NewDatabase opens the journal database selected by cfg.Driver, applies
// pool limits and migrates the journal table.
func NewDatabase(cfg config.JournalConfig, opts Options, zapLogger *zap.Logger) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN())
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", cfg.Driver)
	}

	slow := opts.SlowThreshold
	if slow == 0 {
		slow = 200 * time.Millisecond
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.NewGormLogger(zapLogger, logger.GormLevel(opts.LogLevel), slow),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	if opts.Tracing {
		if err := db.Use(otelgorm.NewPlugin(
			otelgorm.WithDBName(cfg.DBName),
			otelgorm.WithoutQueryVariables(),
		)); err != nil {
			return nil, fmt.Errorf("failed to register journal tracing: %w", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// one writer; in-memory databases exist per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping journal database: %w", err)
	}

	d := &Database{DB: db}
	if err := d.Migrate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Migrate creates or updates the journal table
func (d *Database) Migrate() error {
	if err := d.DB.AutoMigrate(&models.SaleJournalModel{}); err != nil {
		return fmt.Errorf("failed to migrate sale journal: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
