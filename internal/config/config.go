package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/devrep/reputation-registry/internal/domain"
)

// Store drivers accepted in REGISTRY_STORE.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Registry RegistryConfig `envPrefix:"REGISTRY_"`
	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	SQLite   SQLiteConfig   `envPrefix:"SQLITE_"`
	Logger   LoggerConfig
	Auth     AuthConfig `envPrefix:"AUTH_"`
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string `env:"APP_NAME" envDefault:"reputation-registry"`
	Env                   string `env:"APP_ENV" envDefault:"development"`
	Host                  string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port                  string `env:"APP_PORT" envDefault:"8080"`
	Version               string `env:"APP_VERSION" envDefault:"dev"`
	RequestTimeoutSeconds int    `env:"HTTP_REQUEST_TIMEOUT_SECONDS" envDefault:"30"`
}

// RegistryConfig selects the state backend and the deployer identity.
// InitialHeight seeds the block height of a store that has never mined one.
type RegistryConfig struct {
	Owner         string `env:"OWNER"`
	Store         string `env:"STORE" envDefault:"memory"`
	SnapshotPath  string `env:"SNAPSHOT_PATH"`
	InitialHeight uint64 `env:"INITIAL_HEIGHT" envDefault:"0"`
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string `env:"DSN"`
	MaxConns       int32  `env:"MAX_CONNS" envDefault:"10"`
	MinConns       int32  `env:"MIN_CONNS" envDefault:"2"`
	RunMigrations  bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
	ConnMaxIdleSec int32  `env:"CONN_MAX_IDLE_SECONDS" envDefault:"30"`
	ConnMaxLifeSec int32  `env:"CONN_MAX_LIFE_SECONDS" envDefault:"300"`
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string `env:"ADDR" envDefault:"127.0.0.1:6379"`
	Password  string `env:"PASSWORD"`
	DB        int    `env:"DB" envDefault:"0"`
	KeyPrefix string `env:"KEY_PREFIX" envDefault:"registry:"`
}

// SQLiteConfig locates the SQLite database file.
type SQLiteConfig struct {
	Path string `env:"PATH" envDefault:"registry.db"`
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret             string `env:"JWT_SECRET" envDefault:"dev-secret"`
	AccessTokenTTLMinutes int    `env:"ACCESS_TOKEN_TTL_MINUTES" envDefault:"60"`
}

// LoadAuth reads only the AUTH_ group, for tools that mint tokens.
func LoadAuth() (AuthConfig, error) {
	_ = godotenv.Load()

	var cfg AuthConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "AUTH_"}); err != nil {
		return AuthConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Load reads configuration from the environment, after merging a local .env file if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements env tags cannot express.
func (c *Config) Validate() error {
	if c.Registry.Owner == "" {
		return errors.New("REGISTRY_OWNER is required")
	}
	if !domain.Identity(c.Registry.Owner).Valid() {
		return fmt.Errorf("REGISTRY_OWNER %q is not a valid identity", c.Registry.Owner)
	}
	switch c.Registry.Store {
	case StoreMemory, StoreSQLite, StoreRedis:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown REGISTRY_STORE %q", c.Registry.Store)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}
