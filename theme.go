package bloggen

import (
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// layoutFile is the shared shell every page template is rendered into.
const layoutFile = "layout.html"

// Theme loads the site's html/template files and renders pages with them.
// A theme directory contains templates/ (layout.html plus one file per page
// kind) and an optional assets/ tree copied verbatim into the build output.
// All methods are concurrent-safe.
type Theme struct {
	dir   string
	mu    sync.RWMutex
	pages map[string]*template.Template
}

// PageData is the single data shape passed to every theme template.
// Fields not relevant to a page kind are left zero.
type PageData struct {
	Site    SiteConfig
	Meta    PageMeta
	Posts   []Post
	Post    Post
	Related []Post
	Tag     string
	Tags    []string
	Year    int
}

// LoadTheme parses all templates in dir/templates. Each non-layout file
// becomes a page kind ("index.html", "post.html", ...) combined with the
// shared layout.
func LoadTheme(dir string) (*Theme, error) {
	t := &Theme{dir: dir}
	if err := t.Refresh(); err != nil {
		return nil, err
	}
	return t, nil
}

// Refresh re-parses the theme templates from disk. The preview server
// calls this after theme files change.
func (t *Theme) Refresh() error {
	tmplDir := filepath.Join(t.dir, "templates")
	entries, err := os.ReadDir(tmplDir)
	if err != nil {
		return fmt.Errorf("read theme templates in %s: %w", tmplDir, err)
	}

	layoutPath := filepath.Join(tmplDir, layoutFile)
	if _, err := os.Stat(layoutPath); err != nil {
		return fmt.Errorf("theme is missing %s: %w", layoutFile, err)
	}

	pages := make(map[string]*template.Template)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == layoutFile || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmpl, err := template.New(layoutFile).Funcs(themeFuncs()).ParseFiles(layoutPath, filepath.Join(tmplDir, name))
		if err != nil {
			return fmt.Errorf("parse theme template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	if len(pages) == 0 {
		return fmt.Errorf("theme has no page templates in %s", tmplDir)
	}

	t.mu.Lock()
	t.pages = pages
	t.mu.Unlock()
	return nil
}

// Render executes the named page template into w.
func (t *Theme) Render(w io.Writer, page string, data PageData) error {
	t.mu.RLock()
	tmpl, ok := t.pages[page]
	t.mu.RUnlock()
	if !ok {
		return fmt.Errorf("theme has no template %q", page)
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}
	return tmpl.ExecuteTemplate(w, layoutFile, data)
}

// AssetsDir returns the theme's static asset directory (may not exist).
func (t *Theme) AssetsDir() string {
	return filepath.Join(t.dir, "assets")
}

// Dir returns the theme root directory.
func (t *Theme) Dir() string {
	return t.dir
}

func themeFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(date string) string {
			parsed, err := time.Parse("2006-01-02", date)
			if err != nil {
				return date
			}
			return parsed.Format("January 2, 2006")
		},
		"joinTags": func(tags []string) string {
			return strings.Join(tags, ", ")
		},
		"slugify":  Slugify,
		"buildURL": BuildURL,
		"websiteJsonLD": func(cfg SiteConfig) template.JS {
			return template.JS(WebsiteJsonLD(cfg))
		},
		"postJsonLD": func(post Post, cfg SiteConfig) template.JS {
			return template.JS(BlogPostingJsonLD(post, cfg))
		},
	}
}
