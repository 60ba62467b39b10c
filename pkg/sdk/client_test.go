package lightarchive

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_NoBackend(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no backend configured")
	}
}

func TestConnect_UnknownDriver(t *testing.T) {
	_, err := connect(context.Background(), &clientConfig{driver: "cassandra"})
	if err == nil || !strings.Contains(err.Error(), "unknown driver") {
		t.Fatalf("error = %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}
	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.driver != driverValkey || cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("valkey cfg = %+v", cfg)
	}

	cfg = &clientConfig{}
	WithRedis("localhost:6380", "pass").apply(cfg)
	if cfg.driver != driverRedis {
		t.Errorf("driver = %q, want redis", cfg.driver)
	}

	cfg = &clientConfig{}
	WithMongo("mongodb://localhost:27017", "blog").apply(cfg)
	if cfg.driver != driverMongo || cfg.database != "blog" {
		t.Errorf("mongo cfg = %+v", cfg)
	}

	cfg = &clientConfig{}
	WithSQLite("x.db").apply(cfg)
	WithKeyPrefix("blog:").apply(cfg)
	WithPagination(10, 50).apply(cfg)
	WithRelatedWeights(Weights{Category: 1}).apply(cfg)
	if cfg.driver != driverSQLite || cfg.path != "x.db" || cfg.keyPrefix != "blog:" {
		t.Errorf("sqlite cfg = %+v", cfg)
	}
	if cfg.defaultPageSize != 10 || cfg.maxPageSize != 50 {
		t.Errorf("pagination = %d/%d", cfg.defaultPageSize, cfg.maxPageSize)
	}
	if cfg.weights == nil || cfg.weights.Category != 1 {
		t.Errorf("weights = %+v", cfg.weights)
	}

	logger := slog.Default()
	reg := prometheus.NewRegistry()
	WithLogger(logger).apply(cfg)
	WithPrometheus(reg).apply(cfg)
	if cfg.logger != logger || cfg.metricsReg != reg {
		t.Error("logger or registerer not set")
	}
}

func TestClient_Close_NilBackend(t *testing.T) {
	c := &Client{}
	c.Close()
}

func TestNew_SQLite(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	c, err := New(ctx,
		WithSQLite(filepath.Join(t.TempDir(), "archive.db")),
		WithPrometheus(reg),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if h := c.Health(ctx); h.Status != "ok" || h.Checks["database"] != "ok" {
		t.Errorf("health = %+v", h)
	}

	archives := c.Archives()
	a, err := archives.Create(ctx, ArchiveInput{
		Title:    "Redis 캐시 전략",
		Content:  "<p>cache</p>",
		Category: CategoryTech,
		Status:   StatusPublished,
		Tags:     []string{"Redis"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := archives.Create(ctx, ArchiveInput{
		Title:    "Valkey 도입기",
		Content:  "<p>valkey</p>",
		Category: CategoryTech,
		Status:   StatusPublished,
		Tags:     []string{"Redis", "Valkey"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	res, err := archives.Search(ctx, "redis", SearchOptions{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("search total = %d, want 2", res.Total)
	}

	rel, err := archives.Related(ctx, a.ID, 4)
	if err != nil {
		t.Fatalf("Related: %v", err)
	}
	if rel.Mode != RelatedScored || len(rel.Items) != 1 || rel.Items[0].ID != b.ID {
		t.Errorf("related = %+v", rel)
	}
	if rel.Items[0].Score != 15 {
		t.Errorf("score = %d, want 15 (category 10 + tag 5)", rel.Items[0].Score)
	}

	if err := archives.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := archives.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	ops := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("archive.get", statusNotFound))
	if ops != 1 {
		t.Errorf("not_found get count = %v, want 1", ops)
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
}

func TestObserver_WithPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg, driverSQLite)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("archive.get", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("archive.get", time.Now(), ErrNotFound)
	obs.observe("archive.get", time.Now(), errors.New("db down"))

	for status, want := range map[string]float64{statusOK: 1, statusNotFound: 1, statusError: 1, statusInvalid: 0} {
		got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("archive.get", status))
		if got != want {
			t.Errorf("%s = %v, want %v", status, got, want)
		}
	}
}

func TestObserver_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg, driverSQLite)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := newObserver(nil, reg, driverSQLite)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	second.observe("ping", time.Now(), nil)

	got := testutil.ToFloat64(first.metrics.operations.WithLabelValues("ping", statusOK))
	if got != 1 {
		t.Errorf("shared counter = %v, want 1", got)
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, statusOK},
		{ErrNotFound, statusNotFound},
		{ErrInvalidInput, statusInvalid},
		{errors.New("boom"), statusError},
	}
	for _, tt := range tests {
		if got := outcome(tt.err); got != tt.want {
			t.Errorf("outcome(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestObserver_WithLogger(t *testing.T) {
	obs, err := newObserver(slog.Default(), nil, driverSQLite)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}
	obs.observe("test.op", time.Now(), nil)
	obs.observe("test.op", time.Now(), errors.New("test error"))
	obs.observe("test.op", time.Now(), ErrInvalidInput)
}
