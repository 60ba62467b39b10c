package lightarchive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lightsoft-dev/light-archive/internal/db/mongodb"
	dbRedis "github.com/lightsoft-dev/light-archive/internal/db/redis"
	"github.com/lightsoft-dev/light-archive/internal/db/sqlite"
	"github.com/lightsoft-dev/light-archive/internal/domain"
	domarchive "github.com/lightsoft-dev/light-archive/internal/domain/archive"
	"github.com/lightsoft-dev/light-archive/internal/domain/archive/patch"
	"github.com/lightsoft-dev/light-archive/internal/domain/related"
	archiverepo "github.com/lightsoft-dev/light-archive/internal/repository/archive"
	"github.com/lightsoft-dev/light-archive/internal/repository/archivemongo"
	"github.com/lightsoft-dev/light-archive/internal/repository/archivesql"
	archiveuc "github.com/lightsoft-dev/light-archive/internal/usecase/archive"
	healthuc "github.com/lightsoft-dev/light-archive/internal/usecase/health"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interface for substitution in tests.
type archiveUseCase interface {
	Get(ctx context.Context, id string) (domarchive.Archive, error)
	List(ctx context.Context, opts domarchive.ListOptions) ([]domarchive.Archive, error)
	Create(ctx context.Context, in domarchive.Input) (domarchive.Archive, error)
	Update(ctx context.Context, id string, in domarchive.Input) (domarchive.Archive, error)
	Patch(ctx context.Context, id string, p patch.Patch) (domarchive.Archive, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, query string, opts archiveuc.SearchOptions) (archiveuc.SearchResult, error)
	Related(ctx context.Context, id string, limit int) (archiveuc.RelatedResult, error)
	RecordView(ctx context.Context, id string)
}

// backend is a connected archive repository.
type backend struct {
	repo  archiveuc.Repository
	db    healthuc.DBPinger
	close func()
}

// Client is the Light Archive SDK entry point.
type Client struct {
	backend   *backend
	svc       *archiveuc.Service
	archives  archiveUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New connects to the configured backend and waits until it answers.
// The provided context is used for the readiness check and schema setup.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.driver == "" {
		return nil, errors.New("lightarchive: backend required (use WithSQLite, WithMongo, WithRedis or WithValkey)")
	}
	domain.SetKeyPrefix(cfg.keyPrefix)

	obs, err := newObserver(cfg.logger, cfg.metricsReg, cfg.driver)
	if err != nil {
		return nil, err
	}

	b, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return wireClient(b, cfg, obs), nil
}

func connect(ctx context.Context, cfg *clientConfig) (*backend, error) {
	switch cfg.driver {
	case driverRedis, driverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
		if err != nil {
			return nil, fmt.Errorf("lightarchive: create %s store: %w", cfg.driver, err)
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("lightarchive: database not ready: %w", err)
		}
		if !store.SupportsJSON(ctx) {
			store.Close()
			return nil, fmt.Errorf("lightarchive: %s server has no JSON module loaded", cfg.driver)
		}
		return &backend{repo: archiverepo.New(store), db: store, close: store.Close}, nil

	case driverMongo:
		client, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.uri, Database: cfg.database})
		if err != nil {
			return nil, fmt.Errorf("lightarchive: connect mongo: %w", err)
		}
		if err := client.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			client.Close()
			return nil, fmt.Errorf("lightarchive: database not ready: %w", err)
		}
		repo := archivemongo.New(client.Database().Collection(archivemongo.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			client.Close()
			return nil, fmt.Errorf("lightarchive: ensure indexes: %w", err)
		}
		return &backend{repo: repo, db: client, close: client.Close}, nil

	case driverSQLite:
		client, err := sqlite.Open(sqlite.Config{Path: cfg.path})
		if err != nil {
			return nil, fmt.Errorf("lightarchive: %w", err)
		}
		repo := archivesql.New(client.DB())
		if err := repo.Migrate(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("lightarchive: migrate: %w", err)
		}
		return &backend{repo: repo, db: client, close: func() { _ = client.Close() }}, nil

	default:
		return nil, fmt.Errorf("lightarchive: unknown driver %q", cfg.driver)
	}
}

func wireClient(b *backend, cfg *clientConfig, obs *observer) *Client {
	svc := archiveuc.New(b.repo, zap.NewNop())
	if cfg.defaultPageSize > 0 || cfg.maxPageSize > 0 {
		svc = svc.WithPagination(cfg.defaultPageSize, cfg.maxPageSize)
	}
	if w := cfg.weights; w != nil {
		svc = svc.WithRelated(0, related.Weights{
			Category:         w.Category,
			Tag:              w.Tag,
			Technology:       w.Technology,
			Popular:          w.Popular,
			PopularThreshold: w.PopularThreshold,
		})
	}

	return &Client{
		backend:   b,
		svc:       svc,
		archives:  svc,
		healthSvc: healthuc.New(b.db, nil),
		obs:       obs,
	}
}

// Close waits for pending view updates and releases the backend.
func (c *Client) Close() {
	if c.svc != nil {
		c.svc.Wait()
	}
	if c.backend != nil && c.backend.close != nil {
		c.backend.close()
	}
}

// Ping checks backend connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.backend.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Archives returns the archive service.
func (c *Client) Archives() *ArchiveService {
	return &ArchiveService{svc: c.archives, obs: c.obs}
}
