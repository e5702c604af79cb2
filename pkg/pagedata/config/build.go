package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tendant/simple-pagedata/pkg/pagedata"
	"github.com/tendant/simple-pagedata/pkg/pagedata/api"
	"github.com/tendant/simple-pagedata/pkg/pagedata/assets"
	"github.com/tendant/simple-pagedata/pkg/pagedata/metrics"
	"github.com/tendant/simple-pagedata/pkg/pagedata/repo/memory"
	repopg "github.com/tendant/simple-pagedata/pkg/pagedata/repo/postgres"
	"github.com/tendant/simple-pagedata/pkg/pagedata/sanitize"
	"github.com/tendant/simple-pagedata/pkg/pagedata/storage"
	fsstorage "github.com/tendant/simple-pagedata/pkg/pagedata/storage/fs"
	memorystorage "github.com/tendant/simple-pagedata/pkg/pagedata/storage/memory"
	s3storage "github.com/tendant/simple-pagedata/pkg/pagedata/storage/s3"
)

// Runtime holds the components built from a ServerConfig.
type Runtime struct {
	Repository pagedata.Repository
	Controller *pagedata.Controller
	Dispatcher *api.Dispatcher
	Store      storage.BlobStore
	Assets     *assets.Resolver
	TokenAuth  *jwtauth.JWTAuth     // nil when no JWT secret is configured
	Registry   *prometheus.Registry // nil when metrics are disabled
	Logger     *slog.Logger

	closers []func()
}

// Close releases the runtime's resources.
func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Handler returns the HTTP handler serving editor actions.
func (r *Runtime) Handler(maxBodyBytes int64) *api.AjaxHandler {
	opts := []api.HandlerOption{api.WithHandlerLogger(r.Logger), api.WithMaxBodyBytes(maxBodyBytes)}
	if r.TokenAuth != nil {
		opts = append(opts, api.WithTokenAuth(r.TokenAuth))
	}
	return api.NewAjaxHandler(r.Dispatcher, opts...)
}

// BuildController wires repository, storage, hooks and the controller from
// the configuration and registers the controller's actions. extra is applied
// after the configured controller options.
func (c *ServerConfig) BuildController(ctx context.Context, extra ...pagedata.Option) (*Runtime, error) {
	rt := &Runtime{Logger: c.Logger()}

	var sanitizer pagedata.Sanitizer
	if c.Sanitize {
		sanitizer = sanitize.New()
	}

	repo, err := c.buildRepository(ctx, rt, sanitizer)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}
	rt.Repository = repo

	store, err := c.buildStorage(ctx)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageBackend, err)
	}
	rt.Store = store

	resolver := assets.NewResolver(store)
	resolver.AssetsDir = c.AssetsDir
	rt.Assets = resolver

	hooks := []*pagedata.Hooks{pagedata.LoggingHooks(rt.Logger)}
	if c.PublishBundles {
		hooks = append(hooks, assets.NewPublisher(store, repo, rt.Logger).Hooks())
	}
	if c.EnableMetrics {
		rt.Registry = prometheus.NewRegistry()
		rt.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		hooks = append(hooks, metrics.New(rt.Registry).Hooks())
	}

	options := []pagedata.Option{
		pagedata.WithRepository(repo),
		pagedata.WithAssetURLs(resolver),
		pagedata.WithHooks(hooks...),
		pagedata.WithLogger(rt.Logger),
	}
	controller, err := pagedata.New(append(options, extra...)...)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}
	rt.Controller = controller

	rt.Dispatcher = api.NewDispatcher()
	controller.Register(rt.Dispatcher)

	if c.JWTSecret != "" {
		rt.TokenAuth = api.NewTokenAuth(c.JWTSecret)
	}

	return rt, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context, rt *Runtime, sanitizer pagedata.Sanitizer) (pagedata.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		var opts []memory.Option
		if sanitizer != nil {
			opts = append(opts, memory.WithSanitizer(sanitizer))
		}
		return memory.New(opts...), nil
	case "postgres":
		pool, err := c.newPool(ctx)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)

		if c.AutoMigrate {
			if err := repopg.Migrate(ctx, pool); err != nil {
				return nil, err
			}
		}

		var opts []repopg.Option
		if sanitizer != nil {
			opts = append(opts, repopg.WithSanitizer(sanitizer))
		}
		return repopg.NewWithPool(pool, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func (c *ServerConfig) newPool(ctx context.Context) (*pgxpool.Pool, error) {
	if c.DatabaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema := c.DBSchema; schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// buildStorage creates the BlobStore uploads and bundles are kept in
func (c *ServerConfig) buildStorage(ctx context.Context) (storage.BlobStore, error) {
	switch c.StorageBackend {
	case "memory":
		return memorystorage.New(c.StorageBaseURL), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.FSBaseDir,
			URLPrefix: c.StorageBaseURL,
		})
	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.S3Region,
			Bucket:                 c.S3Bucket,
			AccessKeyID:            c.S3AccessKeyID,
			SecretAccessKey:        c.S3SecretAccessKey,
			Endpoint:               c.S3Endpoint,
			UsePathStyle:           c.S3UsePathStyle,
			PublicURL:              c.S3PublicURL,
			EnableSSE:              c.S3EnableSSE,
			SSEAlgorithm:           c.S3SSEAlgorithm,
			SSEKMSKeyID:            c.S3SSEKMSKeyID,
			CreateBucketIfNotExist: c.S3CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.StorageBackend)
	}
}
