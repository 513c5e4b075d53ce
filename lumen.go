// Package lumen loads, validates and serves a blog's site configuration: its
// URL, title, author card, contact links and navigation menu.
//
// The record is read once (and again on reload), validated, snapshotted to
// SQLite, and exposed read-only over HTTP for the site generator that renders
// the blog.
package lumen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eringen/lumen/logging"
	"github.com/eringen/lumen/photo"
)

// App is the config service. It wires together the holder, snapshot store,
// photo cache, handlers and middleware.
type App struct {
	Config ServerConfig
	Echo   *echo.Echo
	Holder *Holder
	Store  *Store
	Photos *photo.Cache
	Logger zerolog.Logger

	metrics      *metrics
	loginLimiter *LoginLimiter
	customRoutes []func(*App)
	stops        []func()
}

// New creates an App. Nothing is opened until Init or Start.
func New(cfg ServerConfig, opts ...Option) *App {
	cfg.setDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	a := &App{
		Config: cfg,
		Echo:   e,
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init loads the configuration, opens the store, and mounts middleware and
// routes. Start calls it; tests call it directly and drive a.Echo.
func (a *App) Init(ctx context.Context) error {
	if a.Config.ConfigPath == "" {
		return errors.New("lumen: ConfigPath is required")
	}
	if a.Config.AdminEnabled() && a.Config.SessionSecret == "" {
		return errors.New("lumen: SessionSecret is required when AdminPassword is set")
	}

	ctx, cancel := context.WithCancel(ctx)
	a.stops = append(a.stops, cancel)
	a.metrics = newMetrics()

	holder, err := NewHolder(NewLoader(a.Config.ConfigPath), logging.WithComponent(a.Logger, "holder"))
	if err != nil {
		a.metrics.reloads.WithLabelValues("failure").Inc()
		return fmt.Errorf("lumen: load config: %w", err)
	}
	a.Holder = holder
	a.metrics.observeLoad(holder.Get())

	store, err := NewStore(a.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("lumen: init store: %w", err)
	}
	a.Store = store
	if err := a.snapshot(ctx, holder.Get(), SourceStartup); err != nil {
		return fmt.Errorf("lumen: snapshot: %w", err)
	}
	a.stops = append(a.stops, store.StartPruneScheduler(a.Config.SnapshotKeep, time.Hour, func(err error) {
		a.Logger.Error().Err(err).Str("event", "snapshots.prune_failed").Msg("prune snapshots")
	}))

	a.Photos = photo.NewCache(a.Config.StaticDir, a.Config.PhotoCacheTTL)

	// Snapshot and drop scaled photos after every reload, whichever way it was triggered.
	updates := make(chan Update, 4)
	holder.Subscribe(updates)
	holder.OnReloadError(func(error) {
		a.metrics.reloads.WithLabelValues("failure").Inc()
	})
	go a.consumeReloads(ctx, updates)

	if a.Config.AdminEnabled() {
		a.loginLimiter = NewLoginLimiter(5, time.Minute)
		a.stops = append(a.stops, a.loginLimiter.Stop)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app, optionally watches the config file, and serves
// until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	if a.Config.Watch {
		if err := a.Holder.Watch(ctx); err != nil {
			return fmt.Errorf("lumen: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.Config.Addr).Str("config", a.Config.ConfigPath).Msg("listening")
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.Echo.Shutdown(shutdownCtx)
}

// Reload re-reads the config file. The snapshot, metrics and photo cache are
// updated by the reload subscriber and the holder's error hook.
func (a *App) Reload(ctx context.Context, source string) (Site, error) {
	return a.Holder.Reload(ctx, source)
}

func (a *App) consumeReloads(ctx context.Context, updates <-chan Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-updates:
			a.metrics.observeLoad(u.Site)
			a.Photos.Invalidate()
			if err := a.snapshot(ctx, u.Site, u.Source); err != nil {
				a.Logger.Error().Err(err).Str("event", "snapshots.save_failed").Msg("snapshot after reload")
			}
		}
	}
}

func (a *App) snapshot(ctx context.Context, s Site, source string) error {
	snap, stored, err := a.Store.Save(ctx, s, source)
	if err != nil {
		return err
	}
	if stored {
		a.metrics.snapshots.Inc()
		a.Logger.Info().Str("event", "snapshots.saved").Str("id", snap.ID).Str("source", source).Msg("snapshot stored")
	}
	return nil
}

// Close stops background work and closes the store.
func (a *App) Close() error {
	for _, stop := range a.stops {
		stop()
	}
	a.stops = nil
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}
