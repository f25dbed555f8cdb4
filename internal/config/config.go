// Package config loads the service configuration from TOML files and ESTATE_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/estate/pkg/auth"
	"github.com/JaimeStill/estate/pkg/cache"
	"github.com/JaimeStill/estate/pkg/database"
	"github.com/JaimeStill/estate/pkg/mongodb"
	"github.com/JaimeStill/estate/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvEstateEnv             = "ESTATE_ENV"
	EnvEstateShutdownTimeout = "ESTATE_SHUTDOWN_TIMEOUT"
	EnvEstateVersion         = "ESTATE_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "ESTATE_DB_HOST",
	Port:            "ESTATE_DB_PORT",
	Name:            "ESTATE_DB_NAME",
	User:            "ESTATE_DB_USER",
	Password:        "ESTATE_DB_PASSWORD",
	SSLMode:         "ESTATE_DB_SSL_MODE",
	MaxOpenConns:    "ESTATE_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "ESTATE_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "ESTATE_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "ESTATE_DB_CONN_TIMEOUT",
}

var mongoEnv = &mongodb.Env{
	URI:         "ESTATE_MONGO_URI",
	Database:    "ESTATE_MONGO_DATABASE",
	Collection:  "ESTATE_MONGO_COLLECTION",
	ConnTimeout: "ESTATE_MONGO_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:              "ESTATE_STORAGE_PROVIDER",
	LocalRoot:             "ESTATE_STORAGE_LOCAL_ROOT",
	AzureContainerName:    "ESTATE_STORAGE_CONTAINER_NAME",
	AzureConnectionString: "ESTATE_STORAGE_CONNECTION_STRING",
	S3Bucket:              "ESTATE_STORAGE_S3_BUCKET",
	S3Region:              "ESTATE_STORAGE_S3_REGION",
	S3Endpoint:            "ESTATE_STORAGE_S3_ENDPOINT",
	S3AccessKeyID:         "ESTATE_STORAGE_S3_ACCESS_KEY_ID",
	S3SecretAccessKey:     "ESTATE_STORAGE_S3_SECRET_ACCESS_KEY",
	S3UsePathStyle:        "ESTATE_STORAGE_S3_USE_PATH_STYLE",
}

var cacheEnv = &cache.Env{
	Enabled:  "ESTATE_CACHE_ENABLED",
	Addr:     "ESTATE_CACHE_ADDR",
	Password: "ESTATE_CACHE_PASSWORD",
	DB:       "ESTATE_CACHE_DB",
	TTL:      "ESTATE_CACHE_TTL",
}

var authEnv = &auth.Env{
	Enabled: "ESTATE_AUTH_ENABLED",
	Secret:  "ESTATE_AUTH_SECRET",
	Issuer:  "ESTATE_AUTH_ISSUER",
}

// Config is the root configuration for the Estate service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Records         RecordsConfig   `toml:"records"`
	Database        database.Config `toml:"database"`
	Mongo           mongodb.Config  `toml:"mongo"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	Auth            auth.Config     `toml:"auth"`
	API             APIConfig       `toml:"api"`
	Reconcile       ReconcileConfig `toml:"reconcile"`
	Logging         LoggingConfig   `toml:"logging"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the ESTATE_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvEstateEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Records.Merge(&overlay.Records)
	c.Database.Merge(&overlay.Database)
	c.Mongo.Merge(&overlay.Mongo)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.Auth.Merge(&overlay.Auth)
	c.API.Merge(&overlay.API)
	c.Reconcile.Merge(&overlay.Reconcile)
	c.Logging.Merge(&overlay.Logging)
}

// finalize settles every sub-config. The database and mongo sections are only
// validated when the records driver selects them.
func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Records.Finalize(); err != nil {
		return fmt.Errorf("records: %w", err)
	}
	switch c.Records.Driver {
	case DriverPostgres:
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	case DriverMongo:
		if err := c.Mongo.Finalize(mongoEnv); err != nil {
			return fmt.Errorf("mongo: %w", err)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Reconcile.Finalize(); err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvEstateShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvEstateVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvEstateEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
