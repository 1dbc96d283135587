package bloggen

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/eringen/bloggen/markdown"
)

const summaryLength = 280

// Builder renders the content store and theme into the build directory.
// The build directory is a pure function of content, theme, and config:
// it holds no state of its own and may be deleted at any time.
type Builder struct {
	cfg      SiteConfig
	source   PostSource
	theme    *Theme
	manifest *Manifest
	drafts   bool
}

// BuildResult summarizes one completed build.
type BuildResult struct {
	BuildID  string
	Posts    int
	Pages    int
	Skipped  int
	Duration time.Duration
}

// BuildOption configures optional Builder behavior.
type BuildOption func(*Builder)

// WithDrafts includes draft posts in the build (preview mode).
func WithDrafts(include bool) BuildOption {
	return func(b *Builder) {
		b.drafts = include
	}
}

// WithManifest attaches a build manifest, enabling unchanged-page skip and
// build history recording.
func WithManifest(m *Manifest) BuildOption {
	return func(b *Builder) {
		b.manifest = m
	}
}

// NewBuilder creates a Builder over the given content source and theme.
func NewBuilder(cfg SiteConfig, source PostSource, theme *Theme, opts ...BuildOption) *Builder {
	b := &Builder{
		cfg:    cfg,
		source: source,
		theme:  theme,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Clean removes the build directory. It succeeds whether or not the
// directory existed, so it can be run repeatedly.
func Clean(cfg SiteConfig) error {
	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		return fmt.Errorf("clean %s: %w", cfg.OutputDir, err)
	}
	return nil
}

// Clean removes this builder's build directory.
func (b *Builder) Clean() error {
	return Clean(b.cfg)
}

// Build renders the whole site into the build directory. Any content or
// theme error aborts the build; no partial site is reported as success.
func (b *Builder) Build() (*BuildResult, error) {
	started := time.Now()
	result := &BuildResult{BuildID: uuid.NewString()}

	all, err := b.source.LoadPosts()
	if err != nil {
		return nil, err
	}
	posts := all
	if !b.drafts {
		posts = Published(all)
	}
	result.Posts = len(posts)

	// Render Markdown bodies and fill summary fallbacks up front so every
	// page sees the same post data.
	for i := range posts {
		html, err := markdown.Render([]byte(posts[i].Content))
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", posts[i].SourcePath, err)
		}
		posts[i].HTML = template.HTML(html)
		if posts[i].Summary == "" {
			posts[i].Summary = markdown.Summary([]byte(posts[i].Content), summaryLength)
		}
	}

	if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create build directory: %w", err)
	}

	tags := ListTags(posts)

	if err := b.writeIndex(posts, tags, result); err != nil {
		return nil, err
	}
	for _, p := range posts {
		if err := b.writePost(p, posts, result); err != nil {
			return nil, err
		}
	}
	for _, tag := range tags {
		if err := b.writeTag(tag, FilterTag(posts, tag), tags, result); err != nil {
			return nil, err
		}
	}
	if err := b.writeFeeds(posts, result); err != nil {
		return nil, err
	}
	if err := b.copyAssets(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)

	if b.manifest != nil {
		record := BuildRecord{
			ID:       result.BuildID,
			Started:  started.UTC().Format(time.RFC3339),
			Finished: time.Now().UTC().Format(time.RFC3339),
			Pages:    result.Pages,
			Skipped:  result.Skipped,
			Drafts:   b.drafts,
		}
		if err := b.manifest.RecordBuild(record); err != nil {
			return nil, fmt.Errorf("record build: %w", err)
		}
	}

	slog.Info("site built",
		"build_id", result.BuildID,
		"posts", result.Posts,
		"pages", result.Pages,
		"skipped", result.Skipped,
		"drafts", b.drafts,
		"duration", result.Duration)
	return result, nil
}

func (b *Builder) writeIndex(posts []Post, tags []string, result *BuildResult) error {
	var buf bytes.Buffer
	data := PageData{
		Site:  b.cfg,
		Posts: posts,
		Tags:  tags,
		Meta: PageMeta{
			Title:       b.cfg.Name,
			Description: b.cfg.Description,
			URL:         BuildURL(b.cfg.URL),
			OGType:      "website",
		},
	}
	if err := b.theme.Render(&buf, "index.html", data); err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	return b.writePage("index.html", buf.Bytes(), result)
}

func (b *Builder) writePost(post Post, posts []Post, result *BuildResult) error {
	var buf bytes.Buffer
	data := PageData{
		Site:    b.cfg,
		Post:    post,
		Posts:   posts,
		Related: FilterRelatedPosts(post, posts),
		Meta: PageMeta{
			Title:       post.Title + " | " + b.cfg.Name,
			Description: post.Summary,
			URL:         BuildURL(b.cfg.URL, "blog", post.Slug),
			OGType:      "article",
		},
	}
	if err := b.theme.Render(&buf, "post.html", data); err != nil {
		return fmt.Errorf("render post %s: %w", post.Slug, err)
	}
	return b.writePage(filepath.Join("blog", post.Slug, "index.html"), buf.Bytes(), result)
}

func (b *Builder) writeTag(tag string, posts []Post, tags []string, result *BuildResult) error {
	var buf bytes.Buffer
	data := PageData{
		Site:  b.cfg,
		Posts: posts,
		Tag:   tag,
		Tags:  tags,
		Meta: PageMeta{
			Title:       "#" + tag + " | " + b.cfg.Name,
			Description: b.cfg.Description,
			URL:         BuildURL(b.cfg.URL, "tags", Slugify(tag)),
			OGType:      "website",
		},
	}
	if err := b.theme.Render(&buf, "tag.html", data); err != nil {
		return fmt.Errorf("render tag %s: %w", tag, err)
	}
	return b.writePage(filepath.Join("tags", Slugify(tag), "index.html"), buf.Bytes(), result)
}

func (b *Builder) writeFeeds(posts []Post, result *BuildResult) error {
	var feed bytes.Buffer
	if err := WriteFeed(&feed, b.cfg, posts); err != nil {
		return fmt.Errorf("render feed: %w", err)
	}
	if err := b.writePage("feed.xml", feed.Bytes(), result); err != nil {
		return err
	}

	var sitemap bytes.Buffer
	if err := WriteSitemap(&sitemap, b.cfg, posts); err != nil {
		return fmt.Errorf("render sitemap: %w", err)
	}
	if err := b.writePage("sitemap.xml", sitemap.Bytes(), result); err != nil {
		return err
	}

	robots := fmt.Sprintf("User-agent: *\nAllow: /\n\nSitemap: %s/sitemap.xml\n", b.cfg.URL)
	return b.writePage("robots.txt", []byte(robots), result)
}

// writePage writes a rendered page under the build directory, skipping the
// write when the manifest shows identical content already on disk.
func (b *Builder) writePage(relPath string, content []byte, result *BuildResult) error {
	outPath := filepath.Join(b.cfg.OutputDir, relPath)

	sum := sha256.Sum256(content)
	hash := hex.EncodeToString(sum[:])

	if b.manifest != nil {
		prev, err := b.manifest.PageHash(relPath)
		if err != nil {
			return fmt.Errorf("manifest lookup %s: %w", relPath, err)
		}
		if prev == hash {
			if _, err := os.Stat(outPath); err == nil {
				result.Skipped++
				return nil
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}
	result.Pages++

	if b.manifest != nil {
		if err := b.manifest.SetPageHash(relPath, hash, result.BuildID); err != nil {
			return fmt.Errorf("manifest update %s: %w", relPath, err)
		}
	}
	return nil
}

// copyAssets copies the theme assets under assets/ and the user static
// directory into the build root. Missing source directories are fine.
func (b *Builder) copyAssets() error {
	if err := b.copyTree(b.theme.AssetsDir(), filepath.Join(b.cfg.OutputDir, "assets")); err != nil {
		return fmt.Errorf("copy theme assets: %w", err)
	}
	if err := b.copyTree(b.cfg.StaticDir, b.cfg.OutputDir); err != nil {
		return fmt.Errorf("copy static files: %w", err)
	}
	return nil
}

func (b *Builder) copyTree(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return b.copyFile(path, target)
	})
}

// copyFile copies one asset, recompressing oversized JPEGs on the way.
func (b *Builder) copyFile(src, dst string) error {
	if isJPEG(src) && b.cfg.MaxImageWidth > 0 {
		in, err := os.Open(src)
		if err != nil {
			return err
		}
		encoded, resized, err := processImage(in, b.cfg.MaxImageWidth)
		closeErr := in.Close()
		if err != nil {
			return fmt.Errorf("process image %s: %w", src, err)
		}
		if closeErr != nil {
			return closeErr
		}
		if resized {
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return err
			}
			return os.WriteFile(dst, encoded, 0o644)
		}
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	_, err = io.Copy(out, in)
	return err
}
