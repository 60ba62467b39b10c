package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/lightsoft-dev/light-archive/internal/config"
	"github.com/lightsoft-dev/light-archive/internal/db/mongodb"
	dbRedis "github.com/lightsoft-dev/light-archive/internal/db/redis"
	"github.com/lightsoft-dev/light-archive/internal/db/sqlite"
	"github.com/lightsoft-dev/light-archive/internal/domain"
	"github.com/lightsoft-dev/light-archive/internal/domain/related"
	archiverepo "github.com/lightsoft-dev/light-archive/internal/repository/archive"
	"github.com/lightsoft-dev/light-archive/internal/repository/archivemongo"
	"github.com/lightsoft-dev/light-archive/internal/repository/archivesql"
	"github.com/lightsoft-dev/light-archive/internal/repository/blobfs"
	"github.com/lightsoft-dev/light-archive/internal/repository/blobgridfs"
	"github.com/lightsoft-dev/light-archive/internal/repository/session"
	"github.com/lightsoft-dev/light-archive/internal/transport/openai"
	archiveuc "github.com/lightsoft-dev/light-archive/internal/usecase/archive"
	attachmentuc "github.com/lightsoft-dev/light-archive/internal/usecase/attachment"
	authuc "github.com/lightsoft-dev/light-archive/internal/usecase/auth"
	healthuc "github.com/lightsoft-dev/light-archive/internal/usecase/health"
)

// pinger is the health view of every database client.
type pinger interface {
	Ping(ctx context.Context) error
}

// blobStore is what both the attachment service and the file route need.
type blobStore interface {
	attachmentuc.BlobStore
	Open(ctx context.Context, path string) (io.ReadCloser, string, error)
}

// app holds the wired services shared by the serve and mcp commands.
type app struct {
	archives    *archiveuc.Service
	attachments *attachmentuc.Service
	auth        *authuc.Service
	health      *healthuc.Service
	ai          *openai.Provider
	files       blobStore

	closers []func()
}

// Close waits for background view updates and releases the backends.
func (a *app) Close() {
	if a.archives != nil {
		a.archives.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp is the composition root: it picks the backend named by the config
// and assembles the services on top of it.
func buildApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	domain.SetKeyPrefix(cfg.Storage.KeyPrefix)

	a := &app{}
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	var (
		repo     archiveuc.Repository
		sessions authuc.SessionStore = session.NewMemory()
		db       pinger
		mongoDB  *mongodb.Client
	)

	switch cfg.Database.Driver {
	case config.DriverRedis, config.DriverValkey:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}
		a.closers = append(a.closers, store.Close)
		if err := store.WaitForReady(ctx, readiness); err != nil {
			a.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		if !store.SupportsJSON(ctx) {
			a.Close()
			return nil, fmt.Errorf("%s server has no JSON module loaded", cfg.Database.Driver)
		}
		repo = archiverepo.New(store)
		sessions = session.NewKV(store)
		db = store

	case config.DriverMongo:
		client, err := mongodb.Connect(ctx, mongodb.Config{
			URI:        cfg.Database.URI,
			Database:   cfg.Database.Name,
			Username:   cfg.Database.Username,
			Password:   cfg.Database.Password,
			AuthSource: cfg.Database.AuthSource,
		})
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		a.closers = append(a.closers, client.Close)
		if err := client.WaitForReady(ctx, readiness); err != nil {
			a.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		mr := archivemongo.New(client.Database().Collection(archivemongo.Collection))
		if err := mr.EnsureIndexes(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		repo = mr
		db = client
		mongoDB = client

	case config.DriverSQLite:
		client, err := sqlite.Open(sqlite.Config{Path: cfg.Database.Path})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := client.Close(); err != nil {
				logger.Warn("close sqlite", zap.Error(err))
			}
		})
		sr := archivesql.New(client.DB())
		if err := sr.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo = sr
		db = client

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	switch cfg.Storage.Driver {
	case config.StorageGridFS:
		if mongoDB == nil {
			a.Close()
			return nil, fmt.Errorf("storage driver gridfs requires the mongo database driver")
		}
		blobs, err := blobgridfs.New(mongoDB.Database(), blobgridfs.Bucket, cfg.Storage.PublicBaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.files = blobs
	default:
		blobs, err := blobfs.New(cfg.Storage.Dir, cfg.Storage.PublicBaseURL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.files = blobs
	}

	a.attachments = attachmentuc.New(a.files, repo).
		WithMaxUploadBytes(int64(cfg.Storage.MaxUploadMB) << 20)

	w := cfg.Related.Weights
	a.archives = archiveuc.New(repo, logger).
		WithPagination(cfg.Index.DefaultPageSize, cfg.Index.MaxPageSize).
		WithRelated(cfg.Related.PoolSize, related.Weights{
			Category:         *w.Category,
			Tag:              *w.Tag,
			Technology:       *w.Technology,
			Popular:          *w.Popular,
			PopularThreshold: *w.PopularThreshold,
		}).
		WithSearchPool(cfg.Search.PoolSize).
		WithViewTimeout(time.Duration(cfg.Views.TimeoutMS) * time.Millisecond).
		WithAttachments(a.attachments)

	a.auth = authuc.New(authuc.Credentials{
		Email:        cfg.Auth.AdminEmail,
		PasswordHash: cfg.Auth.AdminPasswordHash,
	}, sessions, cfg.Auth.APIKeys).
		WithSessionTTL(time.Duration(cfg.Auth.SessionTTLMin) * time.Minute)
	if !a.auth.Enabled() {
		logger.Warn("admin authentication disabled: write routes are open",
			zap.Bool("auth_disabled", cfg.Auth.Disabled))
	}

	a.ai = openai.NewProvider(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
	})

	// A nil interface, not a typed nil pointer, when no key is configured.
	var aiChecker healthuc.AIChecker
	if a.ai.Status().Configured {
		aiChecker = a.ai
	}
	a.health = healthuc.New(db, aiChecker).
		WithTimeout(time.Duration(cfg.HTTP.HealthTimeoutMS) * time.Millisecond)

	return a, nil
}
