package lumen

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Snapshot sources.
const (
	SourceStartup = "startup"
	SourceWatch   = "watch"
	SourceAdmin   = "admin"
)

// Update is sent to subscribers after a successful reload.
type Update struct {
	Site   Site
	Source string
}

// Holder owns the current Site and swaps it atomically on reload. Readers
// always receive a copy.
type Holder struct {
	mu      sync.RWMutex
	current Site
	loader  *Loader
	logger  zerolog.Logger

	listenMu  sync.RWMutex
	listeners []chan<- Update
	onError   func(error)

	debounce time.Duration
}

// NewHolder loads the initial Site through loader.
func NewHolder(loader *Loader, logger zerolog.Logger) (*Holder, error) {
	s, err := loader.Load()
	if err != nil {
		return nil, err
	}
	return &Holder{
		current:  s,
		loader:   loader,
		logger:   logger,
		debounce: 500 * time.Millisecond,
	}, nil
}

// Get returns a copy of the current Site.
func (h *Holder) Get() Site {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current.Clone()
}

// Path is the config file the holder loads from.
func (h *Holder) Path() string {
	return h.loader.Path
}

// Subscribe registers ch to receive every successful reload.
// Sends never block; a full channel misses the update.
func (h *Holder) Subscribe(ch chan<- Update) {
	h.listenMu.Lock()
	h.listeners = append(h.listeners, ch)
	h.listenMu.Unlock()
}

// OnReloadError sets fn to be called with every failed reload, including
// those triggered by Watch.
func (h *Holder) OnReloadError(fn func(error)) {
	h.listenMu.Lock()
	h.onError = fn
	h.listenMu.Unlock()
}

// Reload loads the file again. On any error the current Site is kept.
// source is passed on to subscribers.
func (h *Holder) Reload(_ context.Context, source string) (Site, error) {
	h.logger.Info().Str("event", "config.reload_start").Str("path", h.loader.Path).Str("source", source).Msg("reloading configuration")

	next, err := h.loader.Load()
	if err != nil {
		err = fmt.Errorf("reload: %w", err)
		h.logger.Error().Err(err).Str("event", "config.reload_failed").Str("source", source).Msg("keeping previous configuration")
		h.listenMu.RLock()
		onError := h.onError
		h.listenMu.RUnlock()
		if onError != nil {
			onError(err)
		}
		return Site{}, err
	}

	h.mu.Lock()
	prev := h.current
	h.current = next
	h.mu.Unlock()

	h.logChanges(prev, next)
	h.notify(Update{Site: next, Source: source})

	h.logger.Info().Str("event", "config.reload_success").Msg("configuration reloaded")
	return next.Clone(), nil
}

func (h *Holder) notify(u Update) {
	h.listenMu.RLock()
	defer h.listenMu.RUnlock()
	for _, ch := range h.listeners {
		select {
		case ch <- Update{Site: u.Site.Clone(), Source: u.Source}:
		default:
			h.logger.Warn().Str("event", "config.listener_full").Msg("listener channel full, update dropped")
		}
	}
}

func (h *Holder) logChanges(prev, next Site) {
	if prev.URL != next.URL {
		h.logger.Info().Str("old", prev.URL).Str("new", next.URL).Msg("url changed")
	}
	if prev.Title != next.Title {
		h.logger.Info().Str("old", prev.Title).Str("new", next.Title).Msg("title changed")
	}
	if prev.PostsPerPage != next.PostsPerPage {
		h.logger.Info().Int("old", prev.PostsPerPage).Int("new", next.PostsPerPage).Msg("postsPerPage changed")
	}
	if len(prev.Menu) != len(next.Menu) {
		h.logger.Info().Int("old", len(prev.Menu)).Int("new", len(next.Menu)).Msg("menu size changed")
	}
}

// Watch reloads whenever the config file changes until ctx is done. The
// parent directory is watched so editors that replace the file by rename are
// picked up.
func (h *Holder) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	target := filepath.Clean(h.loader.Path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}
	h.logger.Info().Str("event", "config.watcher_started").Str("path", target).Msg("watching config file")

	go h.watchLoop(ctx, watcher, target)
	return nil
}

func (h *Holder) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, target string) {
	defer watcher.Close()

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			h.logger.Info().Str("event", "config.watcher_stopped").Msg("config watcher stopped")
			return

		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(h.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			_, _ = h.Reload(ctx, SourceWatch)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.logger.Error().Err(err).Str("event", "config.watcher_error").Msg("config watcher error")
		}
	}
}
