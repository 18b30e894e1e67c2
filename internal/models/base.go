package models

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// BaseModel contains the common primary key for all tables.
type BaseModel struct {
	ID uint `gorm:"primaryKey" json:"id"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver string
	DSN    string
	Debug  bool
}

// InitDB opens a database connection for the configured driver.
// The schema is owned by Migrate, not by gorm auto-migration.
func InitDB(config DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case "mysql":
		dialector = mysql.Open(config.DSN)
	case "postgres":
		dialector = postgres.Open(config.DSN)
	case "sqlite":
		dialector = sqlite.Dialector{DriverName: "sqlite", DSN: config.DSN}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if config.Debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", config.Driver, err)
	}
	return db, nil
}

// gooseLogger routes goose output into zerolog.
type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Fatal().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Migrate applies the embedded SQL migrations for the given driver.
func Migrate(ctx context.Context, db *gorm.DB, driver string, log zerolog.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	dialect := driver
	if driver == "sqlite" {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}

	dir, err := fs.Sub(migrationsFS, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("no migrations for %s: %w", driver, err)
	}
	goose.SetBaseFS(dir)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(gooseLogger{log: log})

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
