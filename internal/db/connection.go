package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"yatube/internal/config"
)

// NewDatabase opens the configured database, tunes the pool and migrates the schema.
func NewDatabase(cnf *config.Config) (*gorm.DB, error) {
	db, err := Open(cnf.Database.Driver, cnf.DSN(), gormLogLevel(cnf.Logging.Level))
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql.DB error: %w", err)
	}
	if !isMemorySQLite(cnf.Database.Driver, cnf.DSN()) {
		sqlDB.SetMaxOpenConns(cnf.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cnf.Database.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	slog.Info("database ready", "driver", cnf.Database.Driver)
	return db, nil
}

// Open returns a GORM DB for one of the supported drivers.
func Open(driver, dsn string, level logger.LogLevel) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is not set")
	}

	var dialector gorm.Dialector
	switch driver {
	case "mysql", "":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to %s: %w", driver, err)
	}

	if isMemorySQLite(driver, dsn) {
		// every connection to :memory: would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sql.DB error: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Group{},
		&Post{},
		&Comment{},
		&Follow{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// OpenMemory opens a migrated in-memory SQLite database.
func OpenMemory() (*gorm.DB, error) {
	db, err := Open("sqlite", ":memory:", logger.Silent)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func isMemorySQLite(driver, dsn string) bool {
	return driver == "sqlite" && strings.Contains(dsn, ":memory:")
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "error":
		return logger.Error
	}
	return logger.Warn
}
