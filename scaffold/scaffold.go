// Package scaffold provides the embedded file tree used by `bloggen new`
// to create a fresh site: configuration, a sample post, and the default
// theme. Files with a .tmpl suffix are executed as Go text templates; all
// other files (notably the theme's html/template files) are copied verbatim.
package scaffold

import "embed"

// Templates contains the full scaffold tree for a new site.
//
//go:embed all:templates
var Templates embed.FS
