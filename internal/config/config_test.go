package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Auth: AuthConfig{APIKeys: []string{"test-key"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults rejected: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"redis without addrs", func(c *Config) { c.Database.Driver = DriverRedis }, "database.addrs"},
		{"valkey with addrs", func(c *Config) {
			c.Database.Driver = DriverValkey
			c.Database.Addrs = []string{"localhost:6379"}
		}, ""},
		{"mongo without uri", func(c *Config) { c.Database.Driver = DriverMongo }, "database.uri"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "postgres" }, "database.driver"},
		{"gridfs without mongo", func(c *Config) { c.Storage.Driver = StorageGridFS }, "requires database.driver"},
		{"gridfs with mongo", func(c *Config) {
			c.Database.Driver = DriverMongo
			c.Database.URI = "mongodb://localhost:27017"
			c.Storage.Driver = StorageGridFS
		}, ""},
		{"unknown storage", func(c *Config) { c.Storage.Driver = "s3" }, "storage.driver"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_AdminCredentialsTogether(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.AdminEmail = "admin@example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for email without hash")
	}
	cfg.Auth.AdminPasswordHash = "$2a$10$abc"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_AuthRequired(t *testing.T) {
	tests := []struct {
		name    string
		auth    AuthConfig
		wantErr bool
	}{
		{"nothing configured", AuthConfig{}, true},
		{"only empty api keys", AuthConfig{APIKeys: []string{""}}, true},
		{"api key", AuthConfig{APIKeys: []string{"k1"}}, false},
		{"admin login", AuthConfig{AdminEmail: "admin@example.com", AdminPasswordHash: "$2a$10$abc"}, false},
		{"explicitly disabled", AuthConfig{Disabled: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Auth = tt.auth
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !strings.Contains(err.Error(), "auth.disabled") {
				t.Errorf("error = %q, want hint about auth.disabled", err)
			}
		})
	}
}

func TestLoadFile_ProdWithoutCredentials(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ADMIN_EMAIL", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	t.Setenv("ARCHIVE_API_KEY", "")
	t.Setenv("AUTH_DISABLED", "")

	path := filepath.Join("..", "..", "config", "prod.yaml")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "auth") {
		t.Fatalf("LoadFile(prod) error = %v, want auth error", err)
	}

	t.Setenv("ARCHIVE_API_KEY", "prod-key")
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile(prod) with api key: %v", err)
	}
	if !cfg.Auth.HasCredentials() || cfg.Auth.Disabled {
		t.Errorf("auth = %+v", cfg.Auth)
	}
}

func TestValidate_PageSizes(t *testing.T) {
	cfg := validConfig()
	cfg.Index.DefaultPageSize = 200
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for default page size above max")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.HTTP.HealthTimeoutMS != 3000 {
		t.Errorf("expected HealthTimeoutMS=3000, got %d", cfg.HTTP.HealthTimeoutMS)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Path != "data/lightarchive.db" {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Storage.Driver != StorageFS || cfg.Storage.PublicBaseURL != "/files" || cfg.Storage.MaxUploadMB != 20 {
		t.Errorf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Storage.KeyPrefix != "lightarchive:" {
		t.Errorf("expected KeyPrefix='lightarchive:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Auth.SessionTTLMin != 720 {
		t.Errorf("expected SessionTTLMin=720, got %d", cfg.Auth.SessionTTLMin)
	}
	if cfg.Index.DefaultPageSize != 20 || cfg.Index.MaxPageSize != 100 {
		t.Errorf("unexpected index defaults: %+v", cfg.Index)
	}
	w := cfg.Related.Weights
	if *w.Category != 10 || *w.Tag != 5 || *w.Technology != 3 || *w.Popular != 2 || *w.PopularThreshold != 100 {
		t.Errorf("unexpected weight defaults: %d/%d/%d/%d/%d",
			*w.Category, *w.Tag, *w.Technology, *w.Popular, *w.PopularThreshold)
	}
	if cfg.Related.PoolSize != 50 {
		t.Errorf("expected Related.PoolSize=50, got %d", cfg.Related.PoolSize)
	}
	if cfg.Search.PoolSize != 200 {
		t.Errorf("expected Search.PoolSize=200, got %d", cfg.Search.PoolSize)
	}
	if cfg.Views.TimeoutMS != 2000 {
		t.Errorf("expected Views.TimeoutMS=2000, got %d", cfg.Views.TimeoutMS)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{Driver: DriverMongo, Name: "archive", ReadinessTimeout: 15},
		Index:    IndexConfig{DefaultPageSize: 50, MaxPageSize: 500},
		Related:  RelatedConfig{Weights: WeightsConfig{Tag: intPtr(7), Popular: intPtr(0)}},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Name != "archive" || cfg.Database.Path != "" {
		t.Errorf("unexpected database: %+v", cfg.Database)
	}
	if w := cfg.Related.Weights; *w.Tag != 7 || *w.Category != 10 || *w.Popular != 0 {
		t.Errorf("unexpected weights: tag=%d category=%d popular=%d", *w.Tag, *w.Category, *w.Popular)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestLoadFile_ExpandsEnv(t *testing.T) {
	t.Setenv("LA_TEST_PORT", "9090")
	t.Setenv("LA_TEST_KEY", "")
	path := filepath.Join(t.TempDir(), "test.yaml")
	yaml := `
http:
  port: ${LA_TEST_PORT}
openai:
  api_key: ${LA_TEST_KEY:-sk-fallback}
auth:
  api_keys: ["k1", "k2"]
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d", cfg.HTTP.Port)
	}
	if cfg.OpenAI.APIKey != "sk-fallback" {
		t.Errorf("api key = %q", cfg.OpenAI.APIKey)
	}
	if len(cfg.Auth.APIKeys) != 2 {
		t.Errorf("api keys = %v", cfg.Auth.APIKeys)
	}
}

func intPtr(v int) *int { return &v }

func TestLoadFile_ZeroWeightDisablesSignal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	yaml := `
http:
  port: 8080
auth:
  disabled: true
related:
  weights:
    popular: 0
    tag: 4
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	w := cfg.Related.Weights
	if *w.Popular != 0 {
		t.Errorf("popular = %d, want 0", *w.Popular)
	}
	if *w.Tag != 4 || *w.Category != 10 || *w.Technology != 3 {
		t.Errorf("weights = %d/%d/%d", *w.Category, *w.Tag, *w.Technology)
	}
}

func TestValidate_NegativeWeight(t *testing.T) {
	cfg := validConfig()
	cfg.Related.Weights.Tag = intPtr(-1)
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "related.weights") {
		t.Fatalf("error = %v, want related.weights error", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
