// Package cache provides a SQLite-based caching layer for the streaming
// library snapshot: playlists, their tracks and track artists.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

const (
	// CurrentSchemaVersion is the current database schema version.
	CurrentSchemaVersion = "1"

	// DefaultDBPath is the default path for the cache database.
	DefaultDBPath = "data/library.db"
)

// DB represents the SQLite cache database.
type DB struct {
	mu   sync.RWMutex
	db   *sql.DB
	path string
}

// NewDB creates a new cache database instance.
func NewDB(path string) *DB {
	if path == "" {
		path = DefaultDBPath
	}
	return &DB{
		path: path,
	}
}

// Open opens the database and initializes the schema.
func (d *DB) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Ensure directory exists
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", d.path+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	d.db = db

	if err := d.initSchema(); err != nil {
		d.db.Close()
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Info().Str("path", d.path).Msg("Cache database opened")
	return nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		err := d.db.Close()
		d.db = nil
		return err
	}
	return nil
}

// DB returns the underlying sql.DB handle, or nil when closed.
func (d *DB) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// initSchema initializes the database schema.
func (d *DB) initSchema() error {
	currentVersion := d.getSchemaVersion()

	if currentVersion == "" {
		// Fresh database, create all tables
		if err := d.createSchema(); err != nil {
			return err
		}
		return d.setMeta("schema_version", CurrentSchemaVersion)
	}

	if currentVersion != CurrentSchemaVersion {
		log.Info().
			Str("current", currentVersion).
			Str("target", CurrentSchemaVersion).
			Msg("Migrating cache schema")
		// Add migration logic here when schema changes
		return d.setMeta("schema_version", CurrentSchemaVersion)
	}

	return nil
}

// createSchema creates all database tables.
func (d *DB) createSchema() error {
	schema := `
	-- Playlists table
	CREATE TABLE IF NOT EXISTS playlists (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner_id TEXT,
		snapshot_id TEXT,
		synced_at TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	-- Tracks table (deduplicated across playlists by URI)
	CREATE TABLE IF NOT EXISTS tracks (
		uri TEXT PRIMARY KEY,
		id TEXT,
		name TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	-- Track artist credits
	CREATE TABLE IF NOT EXISTS track_artists (
		track_uri TEXT NOT NULL,
		artist_id TEXT NOT NULL,
		position INTEGER DEFAULT 0,
		PRIMARY KEY (track_uri, artist_id),
		FOREIGN KEY (track_uri) REFERENCES tracks(uri) ON DELETE CASCADE
	);

	-- Playlist membership
	CREATE TABLE IF NOT EXISTS playlist_tracks (
		playlist_id TEXT NOT NULL,
		track_uri TEXT NOT NULL,
		position INTEGER DEFAULT 0,
		PRIMARY KEY (playlist_id, track_uri),
		FOREIGN KEY (playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
		FOREIGN KEY (track_uri) REFERENCES tracks(uri) ON DELETE CASCADE
	);

	-- Cache metadata
	CREATE TABLE IF NOT EXISTS cache_meta (
		key TEXT PRIMARY KEY,
		value TEXT,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_playlist_tracks_playlist ON playlist_tracks(playlist_id);
	CREATE INDEX IF NOT EXISTS idx_track_artists_track ON track_artists(track_uri);
	CREATE INDEX IF NOT EXISTS idx_track_artists_artist ON track_artists(artist_id);
	`

	_, err := d.db.Exec(schema)
	return err
}

// getSchemaVersion returns the stored schema version, or "" for a fresh
// database.
func (d *DB) getSchemaVersion() string {
	var version string
	err := d.db.QueryRow(
		`SELECT value FROM cache_meta WHERE key = 'schema_version'`,
	).Scan(&version)
	if err != nil {
		return ""
	}
	return version
}

// setMeta stores a metadata key/value pair.
func (d *DB) setMeta(key, value string) error {
	_, err := d.db.Exec(`
		INSERT INTO cache_meta (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}
