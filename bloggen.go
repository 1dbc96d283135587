// Package bloggen is a static blog generator and publisher.
// It renders a directory of Markdown posts with YAML front-matter through
// an html/template theme into a fully derived build directory, serves a
// live-rebuilding local preview, and publishes the result by force-pushing
// a single history-less commit to a hosting git remote.
package bloggen

import (
	"fmt"
	"log/slog"
)

// Site wires together the content store, theme, build manifest, and
// configuration for one blog. It is the entry point the CLI uses.
type Site struct {
	Config   SiteConfig
	Store    *Store
	Cache    *PostCache
	Theme    *Theme
	Manifest *Manifest
}

// Open loads the theme and build manifest for the given configuration.
// The content directory itself is read lazily on each build.
func Open(cfg SiteConfig) (*Site, error) {
	theme, err := LoadTheme(cfg.ThemeDir)
	if err != nil {
		return nil, fmt.Errorf("bloggen: load theme: %w", err)
	}

	manifest, err := OpenManifest(cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("bloggen: open manifest: %w", err)
	}

	store := NewStore(cfg.ContentDir)
	return &Site{
		Config:   cfg,
		Store:    store,
		Cache:    NewPostCache(store),
		Theme:    theme,
		Manifest: manifest,
	}, nil
}

// Builder returns a Builder for this site. Draft posts are included when
// drafts is true (the preview server's mode).
func (s *Site) Builder(drafts bool) *Builder {
	return NewBuilder(s.Config, s.Cache, s.Theme,
		WithDrafts(drafts),
		WithManifest(s.Manifest))
}

// Preview returns a preview server that builds with drafts included.
func (s *Site) Preview() *PreviewServer {
	return NewPreviewServer(s.Config, s.Builder(true), s.Cache)
}

// Publisher returns a Publisher that builds without drafts.
func (s *Site) Publisher(sourceDir string) *Publisher {
	return NewPublisher(s.Config, s.Builder(false), sourceDir)
}

// Close releases resources held by the site.
func (s *Site) Close() error {
	if s.Manifest != nil {
		if err := s.Manifest.Close(); err != nil {
			slog.Warn("close manifest", "error", err)
			return err
		}
	}
	return nil
}
