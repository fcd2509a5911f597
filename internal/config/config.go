package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all server configuration loaded from environment variables.
type Config struct {
	Server ServerConfig
	App    AppConfig
	Cache  CacheConfig
	ScanDB ScanDBConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"PORT" default:"5000"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"scanbatch-api"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
	LoginKey    string `envconfig:"LOGIN_KEY" default:""` // guards /api/v1/admin when set
}

// CacheConfig holds settings for the scan history cache.
type CacheConfig struct {
	Type string        `envconfig:"CACHE_TYPE" default:"memory"` // memory, redis, or none
	TTL  time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// ScanDBConfig holds scan record store settings.
type ScanDBConfig struct {
	Type string `envconfig:"SCAN_DB_TYPE" default:""` // mongodb, postgres, mysql, sqlite, memory
	Path string `envconfig:"SCAN_DB_PATH" default:"./data/scans.db"`
	// PostgreSQL / MySQL settings
	Host     string `envconfig:"SCAN_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"SCAN_DB_PORT" default:"0"`
	Name     string `envconfig:"SCAN_DB_NAME" default:"scanapp"`
	User     string `envconfig:"SCAN_DB_USER" default:""`
	Password string `envconfig:"SCAN_DB_PASS" default:""`
	SSLMode  string `envconfig:"SCAN_DB_SSLMODE" default:"disable"`
	// MongoDB settings
	MongoURI        string `envconfig:"MONGO_URI" default:""`
	MongoDatabase   string `envconfig:"MONGO_DATABASE" default:"scanapp"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"scans"`
}

// Backend resolves the store type. An explicit SCAN_DB_TYPE wins; otherwise
// a configured MONGO_URI selects MongoDB and everything else falls back to SQLite.
func (s *ScanDBConfig) Backend() string {
	switch t := strings.ToLower(strings.TrimSpace(s.Type)); t {
	case "mongo", "mongodb":
		return "mongodb"
	case "postgres", "postgresql":
		return "postgres"
	case "mysql", "sqlite", "memory":
		return t
	case "":
		if s.MongoURI != "" {
			return "mongodb"
		}
	}
	return "sqlite"
}

// PostgresDSN returns the PostgreSQL connection string.
func (s *ScanDBConfig) PostgresDSN() string {
	port := s.Port
	if port == 0 {
		port = 5432
	}
	user := s.User
	if user == "" {
		user = "postgres"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, s.Password, s.Host, port, s.Name, s.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (s *ScanDBConfig) MySQLDSN() string {
	port := s.Port
	if port == 0 {
		port = 3306
	}
	user := s.User
	if user == "" {
		user = "root"
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
		user, s.Password, s.Host, port, s.Name)
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// validate normalises the backend selectors and rejects unknown ones, so a
// typo never sends scans to an unintended store.
func (c *Config) validate() error {
	c.ScanDB.Type = strings.ToLower(strings.TrimSpace(c.ScanDB.Type))
	switch c.ScanDB.Type {
	case "", "mongo", "mongodb", "postgres", "postgresql", "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("unknown SCAN_DB_TYPE %q", c.ScanDB.Type)
	}

	c.Cache.Type = strings.ToLower(strings.TrimSpace(c.Cache.Type))
	switch c.Cache.Type {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("unknown CACHE_TYPE %q", c.Cache.Type)
	}
	return nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// ScannerConfig holds the terminal client settings.
type ScannerConfig struct {
	APIURL  string        `envconfig:"SCAN_API_URL" default:"http://localhost:5000"`
	Timeout time.Duration `envconfig:"SCAN_API_TIMEOUT" default:"30s"` // 0 disables
}

// LoadScanner reads the terminal client configuration from environment variables.
func LoadScanner() (*ScannerConfig, error) {
	var cfg ScannerConfig

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load scanner config: %w", err)
	}

	return &cfg, nil
}
