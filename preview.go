package bloggen

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const rebuildDelay = 300 * time.Millisecond

// PreviewServer serves the generated site on a local port and rebuilds it
// whenever content, theme, or static files change. Drafts are included by
// the builder it is given. It runs until the context is cancelled.
type PreviewServer struct {
	cfg     SiteConfig
	builder *Builder
	cache   *PostCache
	echo    *echo.Echo
}

// NewPreviewServer creates a preview server over the given builder. cache
// may be nil when the builder's post source is not cached.
func NewPreviewServer(cfg SiteConfig, builder *Builder, cache *PostCache) *PreviewServer {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s)", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	// Preview must never cache: every reload should show the latest build.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Cache-Control", "no-store")
			return next(c)
		}
	})
	e.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:  cfg.OutputDir,
		Index: "index.html",
	}))

	return &PreviewServer{
		cfg:     cfg,
		builder: builder,
		cache:   cache,
		echo:    e,
	}
}

// Start builds the site once, then serves and watches until ctx is done.
// The initial build must succeed; later rebuild failures are logged and
// the last good output keeps being served.
func (s *PreviewServer) Start(ctx context.Context) error {
	if _, err := s.builder.Build(); err != nil {
		return fmt.Errorf("initial build: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()
	if err := watchDirs(watcher, s.cfg.ContentDir, s.cfg.ThemeDir, s.cfg.StaticDir); err != nil {
		return fmt.Errorf("watch source directories: %w", err)
	}

	reb := newRebuilder(rebuildDelay)
	go reb.Run(ctx, s.rebuild)
	go s.watchLoop(ctx, watcher, reb)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(s.cfg.PreviewAddr)
	}()
	slog.Info("preview server listening", "addr", s.cfg.PreviewAddr, "output", s.cfg.OutputDir)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *PreviewServer) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, reb *rebuilder) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			// New directories need explicit registration.
			if event.Op.Has(fsnotify.Create) {
				_ = watchDirs(watcher, event.Name)
			}
			if s.cache != nil && strings.HasPrefix(event.Name, s.cfg.ContentDir) {
				s.cache.Invalidate()
			}
			reb.Trigger()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watch error", "error", err)
		}
	}
}

// rebuild re-reads the theme and regenerates the site, keeping the last
// good output on failure.
func (s *PreviewServer) rebuild() {
	slog.Info("change detected; rebuilding site")
	if err := s.builder.theme.Refresh(); err != nil {
		slog.Warn("theme reload failed", "error", err)
		return
	}
	if _, err := s.builder.Build(); err != nil {
		slog.Warn("rebuild failed", "error", err)
	}
}
