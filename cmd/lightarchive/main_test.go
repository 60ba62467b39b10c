package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/lightsoft-dev/light-archive/internal/config"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	healthuc "github.com/lightsoft-dev/light-archive/internal/usecase/health"
)

func TestJSONRecoverer(t *testing.T) {
	h := jsonRecoverer(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/archives", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != "internal_error" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestWideEventMiddleware_RequestID(t *testing.T) {
	h := chiMiddleware.RequestID(wideEventMiddleware(zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
	))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
}

func TestHashPasswordCmd(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
	}{
		{"argument", []string{"s3cret"}, ""},
		{"stdin", nil, "s3cret\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			hashPasswordCmd.SetOut(&out)
			hashPasswordCmd.SetIn(strings.NewReader(tt.stdin))

			if err := hashPasswordCmd.RunE(hashPasswordCmd, tt.args); err != nil {
				t.Fatalf("RunE: %v", err)
			}
			hash := strings.TrimSpace(out.String())
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
				t.Errorf("hash does not match: %v", err)
			}
		})
	}
}

func TestHashPasswordCmd_Empty(t *testing.T) {
	hashPasswordCmd.SetIn(strings.NewReader("\n"))
	if err := hashPasswordCmd.RunE(hashPasswordCmd, nil); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   filepath.Join(dir, "archive.db"),
		},
		Storage: config.StorageConfig{Dir: filepath.Join(dir, "files")},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestBuildApp_SQLite(t *testing.T) {
	ctx := context.Background()
	a, err := buildApp(ctx, sqliteConfig(t), zap.NewNop())
	if err != nil {
		t.Fatalf("buildApp: %v", err)
	}
	defer a.Close()

	created, err := a.archives.Create(ctx, domarchive.Input{
		Title:    "Light Archive",
		Content:  "<p>hello</p>",
		Category: domarchive.CategoryTech,
		Tags:     []string{"Go"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := a.archives.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Light Archive" {
		t.Errorf("Title = %q", got.Title)
	}

	if report := a.health.Check(ctx); report.Status != healthuc.Healthy {
		t.Errorf("health = %+v, want ok", report)
	}
	if a.auth.Enabled() {
		t.Error("auth enabled without credentials")
	}
	if a.ai.Status().Configured {
		t.Error("ai provider configured without a key")
	}
}

func TestBuildApp_WarnsWhenAuthDisabled(t *testing.T) {
	tests := []struct {
		name     string
		apiKeys  []string
		wantWarn bool
	}{
		{"no credentials", nil, true},
		{"api key", []string{"k1"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			cfg := sqliteConfig(t)
			cfg.Auth.APIKeys = tt.apiKeys

			a, err := buildApp(context.Background(), cfg, zap.New(core))
			if err != nil {
				t.Fatalf("buildApp: %v", err)
			}
			defer a.Close()

			warned := logs.FilterMessageSnippet("authentication disabled").Len() > 0
			if warned != tt.wantWarn {
				t.Errorf("warned = %v, want %v", warned, tt.wantWarn)
			}
		})
	}
}

func TestBuildApp_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"unknown driver", func(c *config.Config) { c.Database.Driver = "cassandra" }, "unknown database driver"},
		{"gridfs without mongo", func(c *config.Config) { c.Storage.Driver = config.StorageGridFS }, "requires the mongo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sqliteConfig(t)
			tt.mutate(cfg)
			_, err := buildApp(context.Background(), cfg, zap.NewNop())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}
