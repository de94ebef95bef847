package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nlstn/go-odata-uriparser/gormfilter"
)

// Config is the explain server configuration file.
type Config struct {
	Addr         string         `yaml:"addr"`
	LogLevel     string         `yaml:"log_level"`
	ServerTiming bool           `yaml:"server_timing"`
	MaxDepth     int            `yaml:"max_depth"`
	CacheSize    *int           `yaml:"cache_size"`
	Database     DatabaseConfig `yaml:"database"`
	Tracing      TracingConfig  `yaml:"tracing"`
}

// DatabaseConfig selects the dialect SQL is rendered for.
type DatabaseConfig struct {
	Dialect string `yaml:"dialect"`
	DSN     string `yaml:"dsn"`
	Seed    *bool  `yaml:"seed"`
}

// TracingConfig reports spans and metrics to the global OpenTelemetry
// providers installed by the host process.
type TracingConfig struct {
	Enabled    bool `yaml:"enabled"`
	DetailedDB bool `yaml:"detailed_db"`
	QueryText  bool `yaml:"query_text"`
}

func defaultConfig() Config {
	return Config{
		Addr:         ":8080",
		LogLevel:     "info",
		ServerTiming: true,
		Database: DatabaseConfig{
			Dialect: gormfilter.DialectSQLite,
		},
	}
}

// dsn returns the configured DSN, falling back to DATABASE_URL for postgres
// and to a private in-memory database for sqlite.
func (c DatabaseConfig) dsn() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Dialect == gormfilter.DialectPostgres {
		return os.Getenv("DATABASE_URL")
	}
	return ":memory:"
}

// loadConfig reads path over the defaults. An empty path yields the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.Dialect {
	case gormfilter.DialectSQLite, gormfilter.DialectPostgres:
	default:
		return fmt.Errorf("unsupported database dialect %q: use %q or %q", c.Database.Dialect, gormfilter.DialectSQLite, gormfilter.DialectPostgres)
	}
	if c.Database.dsn() == "" {
		return fmt.Errorf("postgres DSN required: set database.dsn or DATABASE_URL")
	}
	if !c.Tracing.Enabled && (c.Tracing.DetailedDB || c.Tracing.QueryText) {
		return fmt.Errorf("tracing.detailed_db and tracing.query_text require tracing.enabled")
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

func (c Config) seedEnabled() bool {
	if c.Database.Seed != nil {
		return *c.Database.Seed
	}
	return c.Database.Dialect == gormfilter.DialectSQLite
}

// openDatabase connects to the configured database.
func openDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	switch cfg.Dialect {
	case gormfilter.DialectPostgres:
		db, err := gorm.Open(postgres.Open(cfg.dsn()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
		}
		return db, nil
	default:
		db, err := gorm.Open(sqlite.Open(cfg.dsn()), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
		}
		// each pooled connection would otherwise get its own :memory: database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	}
}
