package bloggen

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds all configuration for a bloggen site, normally loaded
// from site.yaml in the site root.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:1313")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD and commits

	ContentDir string `yaml:"content_dir"` // Markdown posts (default "content")
	ThemeDir   string `yaml:"theme_dir"`   // Templates + assets (default "theme")
	StaticDir  string `yaml:"static_dir"`  // User static files (default "static")
	OutputDir  string `yaml:"output_dir"`  // Build directory (default "public")

	PreviewAddr  string `yaml:"preview_addr"`  // Preview listen address (default ":1313")
	ManifestPath string `yaml:"manifest_path"` // Build manifest SQLite path (default "data/manifest.db")

	MaxImageWidth int `yaml:"max_image_width"` // JPEG assets wider than this are resized (default 1600)

	Publish PublishConfig `yaml:"publish"`
}

// PublishConfig configures the push and publish targets.
type PublishConfig struct {
	RemoteURL     string      `yaml:"remote_url"`     // Hosting remote for the generated site
	Branch        string      `yaml:"branch"`         // Hosting branch (default "master")
	SourceRemote  string      `yaml:"source_remote"`  // Source repo remote (default "origin")
	SourceBranch  string      `yaml:"source_branch"`  // Source repo branch (default "master")
	CommitMessage string      `yaml:"commit_message"` // Fixed publish commit message
	Auth          *AuthConfig `yaml:"auth"`           // Optional auth for the hosting remote
}

// AuthConfig selects how to authenticate against a git remote.
type AuthConfig struct {
	Type     string `yaml:"type"` // "none", "ssh", "token" or "basic"
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
	KeyPath  string `yaml:"key_path"`
}

// LoadConfig reads a site.yaml file, applies .env and environment
// overrides, and fills in defaults.
func LoadConfig(path string) (SiteConfig, error) {
	// .env is optional; ignore a missing file like the scaffolded sites do.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return SiteConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg SiteConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.setDefaults()
	return cfg, nil
}

// applyEnv lets deployment environments override the file, mainly for
// secrets that should not live in site.yaml.
func (c *SiteConfig) applyEnv() {
	if v := os.Getenv("BLOGGEN_SITE_URL"); v != "" {
		c.URL = strings.TrimSuffix(v, "/")
	}
	if v := os.Getenv("BLOGGEN_REMOTE_URL"); v != "" {
		c.Publish.RemoteURL = v
	}
	if v := os.Getenv("BLOGGEN_PUBLISH_TOKEN"); v != "" {
		if c.Publish.Auth == nil {
			c.Publish.Auth = &AuthConfig{Type: "token"}
		}
		c.Publish.Auth.Token = v
	}
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:1313"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.ThemeDir == "" {
		c.ThemeDir = "theme"
	}
	if c.StaticDir == "" {
		c.StaticDir = "static"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if c.PreviewAddr == "" {
		c.PreviewAddr = ":1313"
	}
	if c.ManifestPath == "" {
		c.ManifestPath = "data/manifest.db"
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1600
	}
	if c.Publish.Branch == "" {
		c.Publish.Branch = "master"
	}
	if c.Publish.SourceRemote == "" {
		c.Publish.SourceRemote = "origin"
	}
	if c.Publish.SourceBranch == "" {
		c.Publish.SourceBranch = "master"
	}
	if c.Publish.CommitMessage == "" {
		c.Publish.CommitMessage = "Site update"
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
