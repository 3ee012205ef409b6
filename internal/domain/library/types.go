// Package library models the local snapshot of the streaming library and
// keeps it in sync with the remote account.
package library

// Track is one playlist entry. Local-only tracks and tracks without a
// stable ID are filtered out during sync and never reach this model.
type Track struct {
	ID        string
	URI       string
	Name      string
	ArtistIDs []string
}

// Playlist is one cached playlist with its track payload.
type Playlist struct {
	ID         string
	Name       string
	OwnerID    string
	SnapshotID string
	Tracks     []Track
}

// Statistics summarizes a library snapshot.
type Statistics struct {
	Playlists     int
	Tracks        int
	UniqueArtists int
}
