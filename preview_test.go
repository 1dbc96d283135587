package bloggen

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPreviewServerServesBuildOutput(t *testing.T) {
	cfg := newTestSite(t)
	writePost(t, cfg.ContentDir, "hello-world.md", postHello)
	writePost(t, cfg.ContentDir, "wip.md", postDraft)

	builder := newTestBuilder(t, cfg, WithDrafts(true))
	if _, err := builder.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	s := NewPreviewServer(cfg, builder, nil)

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/", http.StatusOK, "Hello World"},
		{"/blog/hello-world/", http.StatusOK, "<strong>body</strong>"},
		{"/blog/work-in-progress/", http.StatusOK, "Work in Progress"},
		{"/feed.xml", http.StatusOK, "<rss"},
		{"/no-such-page/", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			s.echo.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Fatalf("GET %s = %d, want %d", tt.path, rec.Code, tt.status)
			}
			if tt.contains != "" && !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("GET %s missing %q:\n%s", tt.path, tt.contains, rec.Body.String())
			}
			if got := rec.Header().Get("Cache-Control"); got != "no-store" {
				t.Errorf("Cache-Control = %q, want no-store", got)
			}
		})
	}
}

func TestPreviewRebuildKeepsLastGoodOutput(t *testing.T) {
	cfg := newTestSite(t)
	writePost(t, cfg.ContentDir, "hello-world.md", postHello)

	builder := newTestBuilder(t, cfg, WithDrafts(true))
	s := NewPreviewServer(cfg, builder, nil)
	if _, err := builder.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	// Break the post, then rebuild. The failure must not wipe the output.
	writePost(t, cfg.ContentDir, "hello-world.md", "---\ntitle: broken\n")
	s.rebuild()

	req := httptest.NewRequest(http.MethodGet, "/blog/hello-world/", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("last good page gone after failed rebuild: %d", rec.Code)
	}

	// Fix it again and confirm the rebuild succeeds.
	writePost(t, cfg.ContentDir, "hello-world.md", postHello)
	s.rebuild()
	rec = httptest.NewRecorder()
	s.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog/hello-world/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("page missing after recovered rebuild: %d", rec.Code)
	}
}
