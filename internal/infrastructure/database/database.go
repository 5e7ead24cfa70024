package database

import (
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"github.com/sangkips/kassensystem/internal/config"
	"github.com/sangkips/kassensystem/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the database selected by cfg.Driver
func NewDatabase(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	switch cfg.Driver {
	case "postgres":
		return NewPostgresDB(cfg, debug)
	case "sqlite", "":
		return NewSQLiteDB(cfg.SQLitePath, debug)
	default:
		return nil, errors.Errorf("unknown database driver %q (use postgres or sqlite)", cfg.Driver)
	}
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), gormConfig(debug))
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	zap.S().Info("Successfully connected to PostgreSQL database")
	return db, nil
}

// NewSQLiteDB opens (or creates) a SQLite database file
func NewSQLiteDB(path string, debug bool) (*gorm.DB, error) {
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database %s", path)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get underlying sql.DB")
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY between
	// a running sale transaction and concurrent requests.
	sqlDB.SetMaxOpenConns(1)

	zap.S().Infof("Using SQLite database %s", path)
	return db, nil
}

func gormConfig(debug bool) *gorm.Config {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	return &gorm.Config{
		Logger: logger.New(zap.NewStdLog(zap.L()), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		// sale_items keep pointing at deleted products
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	}
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	zap.S().Info("Running database migrations...")

	err := db.AutoMigrate(
		&entity.Product{},
		&entity.Sale{},
		&entity.SaleItem{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to run migrations")
	}

	zap.S().Info("Database migrations completed successfully")
	return nil
}
