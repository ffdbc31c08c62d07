package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spf13/viper"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	cgosqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/casapps/tasktracker/src/internal/database/models"
)

// Initialize initializes the database connection
func Initialize(cfg *viper.Viper) (*gorm.DB, error) {
	dialector, err := Dialector(cfg.GetString("database.type"), cfg.GetString("database.dsn"))
	if err != nil {
		return nil, err
	}

	// Configure logger - use Silent for production, Info for debug
	logLevel := logger.Silent
	if cfg.GetBool("debug") {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	maxConns := cfg.GetInt("database.max_connections")
	if maxConns <= 0 {
		maxConns = 25
	}
	// SQLite allows one writer; a single connection keeps transactions from
	// colliding on lock upgrades
	if db.Dialector.Name() == "sqlite" {
		maxConns = 1
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(max(maxConns/2, 1))
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.GetInt("database.max_idle_time")) * time.Second)
	sqlDB.SetConnMaxLifetime(cfg.GetDuration("database.conn_max_lifetime"))

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// dsnParam is a connection parameter applied unless the DSN already sets key
type dsnParam struct {
	key   string
	value string
}

// Pure-Go driver takes pragmas through _pragma
var sqlitePragmas = []dsnParam{
	{"foreign_keys", "_pragma=foreign_keys(1)"},
	{"busy_timeout", "_pragma=busy_timeout(5000)"},
	{"journal_mode", "_pragma=journal_mode(WAL)"},
}

var sqlite3Params = []dsnParam{
	{"foreign_keys", "_foreign_keys=1"},
	{"busy_timeout", "_busy_timeout=5000"},
	{"journal_mode", "_journal_mode=WAL"},
	{"_txlock", "_txlock=immediate"},
}

// Dialector picks the gorm dialector for a configured database type.
// SQLite DSNs get foreign key enforcement, a busy timeout and WAL journaling
// on every connection; the cgo driver also begins transactions IMMEDIATE.
func Dialector(dbType, dsn string) (gorm.Dialector, error) {
	switch dbType {
	case "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlite", "":
		return sqlite.Open(withParams(dsn, sqlitePragmas)), nil
	case "sqlite3":
		return cgosqlite.Open(withParams(dsn, sqlite3Params)), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
}

func withParams(dsn string, params []dsnParam) string {
	for _, p := range params {
		if strings.Contains(dsn, p.key) {
			continue
		}
		if strings.Contains(dsn, "?") {
			dsn += "&" + p.value
		} else {
			dsn += "?" + p.value
		}
	}
	return dsn
}

// Migrate creates or updates the five tables and their constraints
func Migrate(db *gorm.DB) error {
	slog.Default().Info("Running schema bootstrap", "database", db.Dialector.Name())

	// Models are migrated one at a time so parents exist before their children reference them
	for _, model := range models.AllModels() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}
