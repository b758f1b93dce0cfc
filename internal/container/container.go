package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"loanlens/adapters/rediscache"
	"loanlens/adapters/snapshot"
	"loanlens/adapters/sqlstore"
	"loanlens/domain/loan"
	"loanlens/internal"
	"loanlens/internal/charts"
	"loanlens/internal/config"
	"loanlens/internal/content"
	"loanlens/internal/dashboard"
	"loanlens/internal/distribution"
	"loanlens/internal/errors"
	"loanlens/internal/store"
	"loanlens/ports"
	"loanlens/ui"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Data
	Source  ports.LoanSource
	Store   *store.Store
	Watcher *store.Watcher

	// Views
	Cache   ports.ViewCache
	Service *dashboard.Service
	Charts  *charts.Builder
	Content *content.Content

	// Servers
	Server *ui.Server
	Admin  *ui.AdminServer

	repo  *sqlstore.LoanRepository
	redis *redis.Client
}

// New creates a new dependency injection container. Nothing is loaded yet;
// call LoadDataset next.
func New(ctx context.Context, cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}

	c := &Container{Config: cfg, Logger: logger}

	text, err := content.Load(cfg.Dashboard.ContentFile)
	if err != nil {
		return nil, err
	}
	c.Content = text

	if err := c.initSource(ctx); err != nil {
		return nil, err
	}
	c.initCache(ctx)

	c.Store = store.New(c.Source, logger)
	c.Service = dashboard.NewService(c.Store, c.Cache, dashboard.Options{
		OverviewDistribution: cfg.Dashboard.OverviewDistribution,
		Bins:                 distribution.DefaultBins,
	}, logger)
	c.Store.OnReload(func(ds *loan.Dataset) {
		logger.Info("[Container] dataset %s published, dropping cached views", ds.Version().Short())
		c.Service.Invalidate(context.Background())
	})

	c.Charts = charts.NewBuilder(cfg.Dashboard.EChartsAssetsHost)
	c.Server, err = ui.NewServer(ui.Config{
		Port:    cfg.Server.Port,
		GinMode: cfg.Server.GinMode,
	}, c.Service, c.Charts, c.Content, logger)
	if err != nil {
		_ = c.Shutdown(ctx)
		return nil, err
	}
	if cfg.Admin.Enabled {
		c.Admin = ui.NewAdminServer(ui.AdminConfig{
			Host:      cfg.Admin.Host,
			Port:      cfg.Admin.Port,
			Profiling: cfg.Admin.Profiling,
		}, c.Store, logger)
	}

	return c, nil
}

func (c *Container) initSource(ctx context.Context) error {
	data := c.Config.Data
	if data.DatabaseURL == "" {
		c.Source = snapshot.NewDataReader(snapshot.Config{
			FilePath: data.File,
			Format:   snapshot.Format(data.Format),
			Table:    data.Table,
		}, c.Logger)
		c.Logger.Info("[Container] serving snapshot file %s", data.File)
		return nil
	}

	driver, dsn, err := sqlstore.ParseDatabaseURL(data.DatabaseURL)
	if err != nil {
		return err
	}
	repo, err := sqlstore.Open(ctx, driver, dsn, data.Table)
	if err != nil {
		return err
	}
	c.repo = repo
	c.Source = repo
	c.Logger.Info("[Container] serving %s", repo.Describe())
	return nil
}

// initCache prefers Redis when configured. An unreachable Redis is not
// fatal; views are then memoized in process.
func (c *Container) initCache(ctx context.Context) {
	cfg := c.Config.Cache
	if cfg.RedisURL != "" {
		client, err := rediscache.Connect(ctx, cfg.RedisURL, nil, c.Logger)
		if err == nil {
			c.redis = client
			c.Cache = rediscache.New(client, rediscache.DefaultPrefix, cfg.TTL)
			return
		}
		c.Logger.Warn("[Container] redis unavailable, using in-process view cache: %v", err)
	}
	c.Cache = dashboard.NewMemoryCache(cfg.MaxEntries)
}

// LoadDataset performs the startup load. A failure is returned so the
// caller can decide between exiting and serving error pages.
func (c *Container) LoadDataset(ctx context.Context) error {
	if err := c.Store.Load(ctx); err != nil {
		return errors.Wrap(err, "initial dataset load failed")
	}
	return nil
}

// StartWatcher reloads the snapshot file when it changes. It is a no-op
// unless DATA_WATCH is set and the source is a file.
func (c *Container) StartWatcher(ctx context.Context) error {
	if !c.Config.Data.Watch {
		return nil
	}
	reader, ok := c.Source.(*snapshot.DataReader)
	if !ok {
		c.Logger.Warn("[Container] DATA_WATCH ignored: %s is not a file", c.Source.Describe())
		return nil
	}

	w, err := store.NewWatcher(c.Store, reader.Path(), c.Config.Data.WatchDebounce, c.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to create snapshot watcher")
	}
	if err := w.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start snapshot watcher")
	}
	c.Watcher = w
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if c.Server != nil {
		keep(c.Server.Shutdown(ctx))
	}
	if c.Admin != nil {
		keep(c.Admin.Shutdown(ctx))
	}
	if c.Watcher != nil {
		c.Watcher.Stop()
	}
	if c.redis != nil {
		keep(c.redis.Close())
	}
	if c.repo != nil {
		keep(c.repo.Close())
	}
	c.Logger.Sync()
	return firstErr
}
