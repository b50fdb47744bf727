// Package config loads runtime configuration from defaults, an optional
// config file, a .env file and the environment, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/warp/overtime-board/overtime"
)

// Database drivers.
const (
	DriverSQLite     = "sqlite"      // database/sql + go-sqlite3
	DriverGormSQLite = "gorm-sqlite" // GORM over SQLite
	DriverPostgres   = "postgres"    // GORM over Postgres
)

// Config is the application configuration.
type Config struct {
	Server        ServerConfig    `mapstructure:"server"`
	Database      DatabaseConfig  `mapstructure:"db"`
	Roster        RosterConfig    `mapstructure:"roster"`
	Log           LogConfig       `mapstructure:"log"`
	Managers      []ManagerConfig `mapstructure:"managers"`
	ManagersOther string          `mapstructure:"managers_other"`
}

// ServerConfig is the HTTP server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	StaticDir       string        `mapstructure:"static_dir"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and tunes the entry store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RosterConfig locates the employee roster.
type RosterConfig struct {
	Path   string `mapstructure:"path"`
	Strict bool   `mapstructure:"strict"` // reject logins missing from the roster
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text | json
}

// ManagerConfig is one quarterly summary bucket.
type ManagerConfig struct {
	Name    string   `mapstructure:"name"`
	Aliases []string `mapstructure:"aliases"`
}

// New returns a viper instance with defaults and environment bindings.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173", "http://localhost:8080"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.url", "overtime.db")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("roster.path", "data/employeeList.csv")
	v.SetDefault("roster.strict", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("managers_other", overtime.DefaultOtherBucket)

	v.SetEnvPrefix("OVERTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// hosting platforms inject these without a prefix
	_ = v.BindEnv("db.url", "OVERTIME_DB_URL", "DATABASE_URL")
	_ = v.BindEnv("server.port", "OVERTIME_SERVER_PORT", "PORT")

	return v
}

// Load reads .env (if present), then configFile (if set), and decodes v.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	url := strings.TrimSpace(c.Database.URL)
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		c.Database.Driver = DriverPostgres
	}
	c.Database.URL = url

	switch c.Database.Driver {
	case DriverSQLite, DriverGormSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown db.driver %q (want %s, %s or %s)",
			c.Database.Driver, DriverSQLite, DriverGormSQLite, DriverPostgres)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("db.url is empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// ManagerTable builds the quarterly bucket table, falling back to the
// built-in managers when none are configured.
func (c *Config) ManagerTable() (*overtime.ManagerTable, error) {
	if len(c.Managers) == 0 {
		return overtime.NewManagerTable(overtime.DefaultManagerBuckets, c.ManagersOther)
	}
	buckets := make([]overtime.ManagerBucket, len(c.Managers))
	for i, m := range c.Managers {
		buckets[i] = overtime.ManagerBucket{Name: m.Name, Aliases: m.Aliases}
	}
	return overtime.NewManagerTable(buckets, c.ManagersOther)
}
