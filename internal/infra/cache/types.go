// Package cache provides a SQLite-based caching layer for the streaming
// library snapshot.
package cache

import "time"

// CachedPlaylist represents a playlist stored in the cache.
type CachedPlaylist struct {
	ID         string    `json:"id"`         // Opaque external playlist ID
	Name       string    `json:"name"`       // Display name
	OwnerID    string    `json:"ownerId"`    // Account that owns the playlist
	SnapshotID string    `json:"snapshotId"` // Remote snapshot marker for change detection
	SyncedAt   time.Time `json:"syncedAt"`   // When the track payload was last refreshed
}

// CachedTrack represents one track of a playlist, with its artist credits
// in order.
type CachedTrack struct {
	URI       string   `json:"uri"`       // Stable playback URI
	ID        string   `json:"id"`        // Opaque external track ID
	Name      string   `json:"name"`      // Track title
	ArtistIDs []string `json:"artistIds"` // Artist IDs in credit order
}
