package bloggen

import (
	"path/filepath"
	"testing"
)

func openTestManifest(t *testing.T) *Manifest {
	t.Helper()
	m, err := OpenManifest(filepath.Join(t.TempDir(), "data", "manifest.db"))
	if err != nil {
		t.Fatalf("OpenManifest: %v", err)
	}
	t.Cleanup(func() {
		_ = m.Close()
	})
	return m
}

func TestManifestPageHash(t *testing.T) {
	m := openTestManifest(t)

	hash, err := m.PageHash("index.html")
	if err != nil {
		t.Fatalf("PageHash: %v", err)
	}
	if hash != "" {
		t.Errorf("hash for unknown page = %q, want empty", hash)
	}

	if err := m.SetPageHash("index.html", "abc123", "build-1"); err != nil {
		t.Fatalf("SetPageHash: %v", err)
	}
	hash, err = m.PageHash("index.html")
	if err != nil {
		t.Fatalf("PageHash: %v", err)
	}
	if hash != "abc123" {
		t.Errorf("hash = %q, want abc123", hash)
	}

	// Upsert replaces the previous hash.
	if err := m.SetPageHash("index.html", "def456", "build-2"); err != nil {
		t.Fatalf("SetPageHash: %v", err)
	}
	hash, _ = m.PageHash("index.html")
	if hash != "def456" {
		t.Errorf("hash after upsert = %q, want def456", hash)
	}
}

func TestManifestBuildHistory(t *testing.T) {
	m := openTestManifest(t)

	if _, ok, err := m.LastBuild(); err != nil || ok {
		t.Fatalf("LastBuild on empty manifest: ok=%v err=%v", ok, err)
	}

	records := []BuildRecord{
		{ID: "b1", Started: "2024-06-01T10:00:00Z", Finished: "2024-06-01T10:00:01Z", Pages: 5},
		{ID: "b2", Started: "2024-06-02T10:00:00Z", Finished: "2024-06-02T10:00:02Z", Pages: 1, Skipped: 4, Drafts: true},
	}
	for _, r := range records {
		if err := m.RecordBuild(r); err != nil {
			t.Fatalf("RecordBuild(%s): %v", r.ID, err)
		}
	}

	last, ok, err := m.LastBuild()
	if err != nil {
		t.Fatalf("LastBuild: %v", err)
	}
	if !ok {
		t.Fatal("LastBuild found nothing")
	}
	if last.ID != "b2" {
		t.Errorf("LastBuild.ID = %s, want b2", last.ID)
	}
	if last.Pages != 1 || last.Skipped != 4 || !last.Drafts {
		t.Errorf("LastBuild = %+v", last)
	}
}

func TestManifestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.db")

	m, err := OpenManifest(path)
	if err != nil {
		t.Fatalf("OpenManifest: %v", err)
	}
	if err := m.SetPageHash("feed.xml", "aaa", "b1"); err != nil {
		t.Fatal(err)
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	m, err = OpenManifest(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() {
		_ = m.Close()
	}()
	hash, err := m.PageHash("feed.xml")
	if err != nil {
		t.Fatal(err)
	}
	if hash != "aaa" {
		t.Errorf("hash after reopen = %q, want aaa", hash)
	}
}
