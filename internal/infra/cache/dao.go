package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DAO provides data access operations on the cache database.
type DAO struct {
	db *DB
}

// NewDAO creates a new data access object.
func NewDAO(db *DB) *DAO {
	return &DAO{db: db}
}

// SavePlaylist upserts a playlist together with its full track payload.
// The previous membership rows are replaced so deletions on the remote
// side are reflected locally.
func (d *DAO) SavePlaylist(p CachedPlaylist, tracks []CachedTrack) error {
	sqlDB := d.db.DB()
	if sqlDB == nil {
		return fmt.Errorf("cache database not open")
	}

	tx, err := sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	syncedAt := p.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = time.Now().UTC()
	}

	_, err = tx.Exec(`
		INSERT INTO playlists (id, name, owner_id, snapshot_id, synced_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			owner_id = excluded.owner_id,
			snapshot_id = excluded.snapshot_id,
			synced_at = excluded.synced_at,
			updated_at = CURRENT_TIMESTAMP
	`, p.ID, p.Name, p.OwnerID, p.SnapshotID, syncedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert playlist: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM playlist_tracks WHERE playlist_id = ?`, p.ID); err != nil {
		return fmt.Errorf("clear playlist tracks: %w", err)
	}

	for i, track := range tracks {
		_, err = tx.Exec(`
			INSERT INTO tracks (uri, id, name)
			VALUES (?, ?, ?)
			ON CONFLICT(uri) DO UPDATE SET id = excluded.id, name = excluded.name
		`, track.URI, track.ID, track.Name)
		if err != nil {
			return fmt.Errorf("upsert track %s: %w", track.URI, err)
		}

		if _, err := tx.Exec(`DELETE FROM track_artists WHERE track_uri = ?`, track.URI); err != nil {
			return fmt.Errorf("clear track artists: %w", err)
		}
		for j, artistID := range track.ArtistIDs {
			_, err = tx.Exec(`
				INSERT OR IGNORE INTO track_artists (track_uri, artist_id, position)
				VALUES (?, ?, ?)
			`, track.URI, artistID, j)
			if err != nil {
				return fmt.Errorf("insert track artist: %w", err)
			}
		}

		// OR IGNORE: a payload can repeat a URI (a track re-added to the
		// staging inbox); the first occurrence keeps its position.
		_, err = tx.Exec(`
			INSERT OR IGNORE INTO playlist_tracks (playlist_id, track_uri, position)
			VALUES (?, ?, ?)
		`, p.ID, track.URI, i)
		if err != nil {
			return fmt.Errorf("insert playlist track: %w", err)
		}
	}

	return tx.Commit()
}

// GetPlaylist returns one cached playlist by ID.
func (d *DAO) GetPlaylist(id string) (CachedPlaylist, bool, error) {
	sqlDB := d.db.DB()
	if sqlDB == nil {
		return CachedPlaylist{}, false, fmt.Errorf("cache database not open")
	}

	row := sqlDB.QueryRow(`
		SELECT id, name, owner_id, snapshot_id, synced_at
		FROM playlists WHERE id = ?
	`, id)

	p, err := scanPlaylist(row)
	if err == sql.ErrNoRows {
		return CachedPlaylist{}, false, nil
	}
	if err != nil {
		return CachedPlaylist{}, false, err
	}
	return p, true, nil
}

// Playlists returns all cached playlists ordered by name.
func (d *DAO) Playlists() ([]CachedPlaylist, error) {
	sqlDB := d.db.DB()
	if sqlDB == nil {
		return nil, fmt.Errorf("cache database not open")
	}

	rows, err := sqlDB.Query(`
		SELECT id, name, owner_id, snapshot_id, synced_at
		FROM playlists ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []CachedPlaylist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// SnapshotID returns the cached remote snapshot marker for a playlist.
func (d *DAO) SnapshotID(playlistID string) (string, bool) {
	sqlDB := d.db.DB()
	if sqlDB == nil {
		return "", false
	}

	var snapshotID string
	err := sqlDB.QueryRow(
		`SELECT snapshot_id FROM playlists WHERE id = ?`, playlistID,
	).Scan(&snapshotID)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Warn().Err(err).Str("playlist", playlistID).Msg("Failed to read cached snapshot ID")
		}
		return "", false
	}
	return snapshotID, true
}

// PlaylistTracks returns the tracks of a cached playlist in stored order,
// each with its artist credits.
func (d *DAO) PlaylistTracks(playlistID string) ([]CachedTrack, error) {
	sqlDB := d.db.DB()
	if sqlDB == nil {
		return nil, fmt.Errorf("cache database not open")
	}

	rows, err := sqlDB.Query(`
		SELECT t.uri, t.id, t.name
		FROM playlist_tracks pt
		JOIN tracks t ON t.uri = pt.track_uri
		WHERE pt.playlist_id = ?
		ORDER BY pt.position
	`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("query playlist tracks: %w", err)
	}
	defer rows.Close()

	var tracks []CachedTrack
	for rows.Next() {
		var t CachedTrack
		var id, name sql.NullString
		if err := rows.Scan(&t.URI, &id, &name); err != nil {
			return nil, err
		}
		t.ID = id.String
		t.Name = name.String
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range tracks {
		artistIDs, err := d.trackArtists(sqlDB, tracks[i].URI)
		if err != nil {
			return nil, err
		}
		tracks[i].ArtistIDs = artistIDs
	}
	return tracks, nil
}

// HasPlaylistTracks reports whether a track payload is cached for the
// playlist, even an empty one.
func (d *DAO) HasPlaylistTracks(playlistID string) bool {
	sqlDB := d.db.DB()
	if sqlDB == nil {
		return false
	}

	var syncedAt sql.NullString
	err := sqlDB.QueryRow(
		`SELECT synced_at FROM playlists WHERE id = ?`, playlistID,
	).Scan(&syncedAt)
	return err == nil && syncedAt.Valid && syncedAt.String != ""
}

func (d *DAO) trackArtists(sqlDB *sql.DB, trackURI string) ([]string, error) {
	rows, err := sqlDB.Query(`
		SELECT artist_id FROM track_artists
		WHERE track_uri = ?
		ORDER BY position
	`, trackURI)
	if err != nil {
		return nil, fmt.Errorf("query track artists: %w", err)
	}
	defer rows.Close()

	var artistIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		artistIDs = append(artistIDs, id)
	}
	return artistIDs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (CachedPlaylist, error) {
	var p CachedPlaylist
	var ownerID, snapshotID, syncedAt sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &ownerID, &snapshotID, &syncedAt); err != nil {
		return p, err
	}
	p.OwnerID = ownerID.String
	p.SnapshotID = snapshotID.String
	if syncedAt.Valid && syncedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, syncedAt.String); err == nil {
			p.SyncedAt = t
		}
	}
	return p, nil
}
