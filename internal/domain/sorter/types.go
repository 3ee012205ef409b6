// Package sorter routes candidate tracks from a staging playlist into
// folder aggregator playlists by matching track artists against the artists
// already curated into each folder.
package sorter

// Track is one candidate item being routed: its URI and the IDs of its
// artists in credit order. Local-only tracks and tracks without a stable ID
// are filtered out before they reach this package.
type Track struct {
	URI       string
	ArtistIDs []string
}

// AdditionPlan maps a destination playlist ID to the set of URIs pending
// addition there.
type AdditionPlan map[string][]string

// ProvenanceMap maps a track URI to every folder it matched. It feeds run
// diagnostics and the removal-from-source decision.
type ProvenanceMap map[string][]string

// ArtistSet is the set of artist IDs curated into one folder.
type ArtistSet map[string]struct{}

// FolderArtistIndex maps a folder name to its artist set. Built fresh each
// run from cached playlist data and passed by reference; never a
// process-wide singleton.
type FolderArtistIndex map[string]ArtistSet
