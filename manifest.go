package bloggen

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Manifest records build history and per-page content hashes in SQLite.
// It lives outside the build directory so the build output stays a fully
// derived artifact that can be wiped at any time. The builder consults it
// to skip writing pages whose rendered content is unchanged.
type Manifest struct {
	db *sql.DB
}

// BuildRecord summarizes one build run.
type BuildRecord struct {
	ID       string
	Started  string // RFC3339
	Finished string // RFC3339
	Pages    int
	Skipped  int
	Drafts   bool
}

// OpenManifest opens (or creates) the manifest database at path, ensures
// the data directory exists, and runs schema migrations.
func OpenManifest(path string) (*Manifest, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while a rebuild writes; a busy
	// timeout makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	m := &Manifest{db: db}
	if err := m.ensureSchema(); err != nil {
		return nil, err
	}
	return m, nil
}

// Close closes the underlying database connection.
func (m *Manifest) Close() error {
	return m.db.Close()
}

func (m *Manifest) ensureSchema() error {
	_, err := m.db.Exec(`
CREATE TABLE IF NOT EXISTS builds (
    id TEXT PRIMARY KEY,
    started TEXT NOT NULL,
    finished TEXT NOT NULL,
    pages INTEGER NOT NULL,
    skipped INTEGER NOT NULL,
    drafts INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS pages (
    path TEXT PRIMARY KEY,
    hash TEXT NOT NULL,
    build_id TEXT NOT NULL
);
`)
	return err
}

// PageHash returns the recorded content hash for a page path, or "" if the
// page has never been built.
func (m *Manifest) PageHash(path string) (string, error) {
	var hash string
	err := m.db.QueryRow(`SELECT hash FROM pages WHERE path = ?`, path).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

// SetPageHash upserts the content hash for a page path.
func (m *Manifest) SetPageHash(path, hash, buildID string) error {
	_, err := m.db.Exec(`INSERT OR REPLACE INTO pages (path, hash, build_id) VALUES (?, ?, ?)`,
		path, hash, buildID)
	return err
}

// RecordBuild stores a completed build run.
func (m *Manifest) RecordBuild(b BuildRecord) error {
	drafts := 0
	if b.Drafts {
		drafts = 1
	}
	_, err := m.db.Exec(`INSERT INTO builds (id, started, finished, pages, skipped, drafts) VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Started, b.Finished, b.Pages, b.Skipped, drafts)
	return err
}

// LastBuild returns the most recently finished build, if any.
func (m *Manifest) LastBuild() (BuildRecord, bool, error) {
	var b BuildRecord
	var drafts int
	err := m.db.QueryRow(`SELECT id, started, finished, pages, skipped, drafts FROM builds ORDER BY finished DESC LIMIT 1`).
		Scan(&b.ID, &b.Started, &b.Finished, &b.Pages, &b.Skipped, &drafts)
	if err == sql.ErrNoRows {
		return BuildRecord{}, false, nil
	}
	if err != nil {
		return BuildRecord{}, false, err
	}
	b.Drafts = drafts == 1
	return b, true, nil
}
