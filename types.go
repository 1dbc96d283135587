package bloggen

import "html/template"

// Post is the core content type, parsed from a Markdown file with YAML
// front-matter and rendered by the theme templates.
type Post struct {
	Slug       string
	Title      string
	Date       string
	Tags       []string
	Category   string
	Summary    string
	Link       string
	Draft      bool
	SourcePath string
	Content    string        // raw Markdown body
	HTML       template.HTML // rendered body, set by the builder
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
