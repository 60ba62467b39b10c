package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the Light Archive service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Auth     AuthConfig     `yaml:"auth"`
	Index    IndexConfig    `yaml:"index"`
	Related  RelatedConfig  `yaml:"related"`
	Search   SearchConfig   `yaml:"search"`
	Views    ViewsConfig    `yaml:"views"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds admin authentication settings.
// Admin routes are only open when Disabled is set and no credential is configured.
type AuthConfig struct {
	Disabled          bool     `yaml:"disabled"`
	AdminEmail        string   `yaml:"admin_email"`
	AdminPasswordHash string   `yaml:"admin_password_hash"` // bcrypt
	SessionTTLMin     int      `yaml:"session_ttl_min"`
	APIKeys           []string `yaml:"api_keys"`
}

// HasCredentials reports whether an admin login or a non-empty API key is configured.
func (a AuthConfig) HasCredentials() bool {
	if a.AdminEmail != "" && a.AdminPasswordHash != "" {
		return true
	}
	for _, k := range a.APIKeys {
		if k != "" {
			return true
		}
	}
	return false
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
	HealthTimeoutMS int   `yaml:"health_timeout_ms"` // per-component /health check
}

// Database drivers.
const (
	DriverRedis  = "redis"
	DriverValkey = "valkey"
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, valkey, mongo, sqlite (default: sqlite)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"` // redis logical database
	URI              string   `yaml:"uri"`
	Name             string   `yaml:"name"`
	AuthSource       string   `yaml:"auth_source"`
	Path             string   `yaml:"path"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds pagination settings.
type IndexConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// Storage drivers.
const (
	StorageFS     = "fs"
	StorageGridFS = "gridfs"
)

// StorageConfig holds attachment storage and key namespace settings.
type StorageConfig struct {
	Driver        string `yaml:"driver"` // fs, gridfs (default: fs)
	Dir           string `yaml:"dir"`
	PublicBaseURL string `yaml:"public_base_url"`
	MaxUploadMB   int    `yaml:"max_upload_mb"`
	KeyPrefix     string `yaml:"key_prefix"`
}

// RelatedConfig tunes recommendations.
type RelatedConfig struct {
	PoolSize int           `yaml:"pool_size"`
	Weights  WeightsConfig `yaml:"weights"`
}

// WeightsConfig holds the similarity points. Omitted fields take the defaults;
// an explicit 0 turns the signal off.
type WeightsConfig struct {
	Category         *int   `yaml:"category"`
	Tag              *int   `yaml:"tag"`
	Technology       *int   `yaml:"technology"`
	Popular          *int   `yaml:"popular"`
	PopularThreshold *int64 `yaml:"popular_threshold"`
}

// SearchConfig tunes keyword search.
type SearchConfig struct {
	PoolSize int `yaml:"pool_size"`
}

// ViewsConfig tunes view counting.
type ViewsConfig struct {
	TimeoutMS int `yaml:"timeout_ms"`
}

// OpenAIConfig holds AI provider settings.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit YAML path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 4 << 20
	}
	if c.HTTP.HealthTimeoutMS <= 0 {
		c.HTTP.HealthTimeoutMS = 3000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = "data/lightarchive.db"
	}
	if c.Database.Driver == DriverMongo && c.Database.Name == "" {
		c.Database.Name = "lightarchive"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = StorageFS
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data/files"
	}
	if c.Storage.PublicBaseURL == "" {
		c.Storage.PublicBaseURL = "/files"
	}
	if c.Storage.MaxUploadMB <= 0 {
		c.Storage.MaxUploadMB = 20
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "lightarchive:"
	}
	if c.Auth.SessionTTLMin <= 0 {
		c.Auth.SessionTTLMin = 720
	}
	if c.Index.DefaultPageSize <= 0 {
		c.Index.DefaultPageSize = 20
	}
	if c.Index.MaxPageSize <= 0 {
		c.Index.MaxPageSize = 100
	}
	if c.Related.PoolSize <= 0 {
		c.Related.PoolSize = 50
	}
	w := &c.Related.Weights
	setDefault(&w.Category, 10)
	setDefault(&w.Tag, 5)
	setDefault(&w.Technology, 3)
	setDefault(&w.Popular, 2)
	setDefault(&w.PopularThreshold, 100)
	if c.Search.PoolSize <= 0 {
		c.Search.PoolSize = 200
	}
	if c.Views.TimeoutMS <= 0 {
		c.Views.TimeoutMS = 2000
	}
}

func setDefault[T any](p **T, v T) {
	if *p == nil {
		*p = &v
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case DriverRedis, DriverValkey:
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for driver %q", c.Database.Driver)
		}
	case DriverMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("database.uri is required for driver %q", c.Database.Driver)
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for driver %q", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver must be redis, valkey, mongo or sqlite, got %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case StorageFS:
	case StorageGridFS:
		if c.Database.Driver != DriverMongo {
			return fmt.Errorf("storage.driver %q requires database.driver %q", StorageGridFS, DriverMongo)
		}
	default:
		return fmt.Errorf("storage.driver must be fs or gridfs, got %q", c.Storage.Driver)
	}
	if w := c.Related.Weights; negative(w.Category, w.Tag, w.Technology, w.Popular) ||
		(w.PopularThreshold != nil && *w.PopularThreshold < 0) {
		return fmt.Errorf("related.weights must not be negative")
	}
	if c.Index.DefaultPageSize > c.Index.MaxPageSize {
		return fmt.Errorf("index.default_page_size (%d) exceeds index.max_page_size (%d)",
			c.Index.DefaultPageSize, c.Index.MaxPageSize)
	}
	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPasswordHash == "") {
		return fmt.Errorf("auth.admin_email and auth.admin_password_hash must be set together")
	}
	if !c.Auth.Disabled && !c.Auth.HasCredentials() {
		return fmt.Errorf("auth needs admin_email/admin_password_hash or api_keys; set auth.disabled to run without authentication")
	}
	return nil
}

func negative(vals ...*int) bool {
	for _, v := range vals {
		if v != nil && *v < 0 {
			return true
		}
	}
	return false
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
