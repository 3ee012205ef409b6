package library

import (
	"sort"

	"github.com/edumarques81/meridian-playlist-curator/internal/domain/flow"
)

// Snapshot is an in-memory view over the cached playlists of one account,
// built once per run and passed by reference; never a process-wide
// singleton.
type Snapshot struct {
	playlists []Playlist
	byID      map[string]int
	nameIndex map[string]string
}

// NewSnapshot builds a snapshot view. On duplicate name keys the playlist
// appearing later in the input slice wins; the cache store feeds playlists
// in name order, so among same-named playlists the winner is the last in
// that ordering, not the most recently synced.
func NewSnapshot(playlists []Playlist) *Snapshot {
	s := &Snapshot{
		playlists: playlists,
		byID:      make(map[string]int, len(playlists)),
		nameIndex: make(map[string]string, len(playlists)),
	}
	for i, p := range playlists {
		s.byID[p.ID] = i
		s.nameIndex[flow.NameKey(p.Name)] = p.ID
	}
	return s
}

// Playlists returns all playlists in the snapshot.
func (s *Snapshot) Playlists() []Playlist {
	return s.playlists
}

// Playlist returns the playlist with the given ID.
func (s *Snapshot) Playlist(id string) (Playlist, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Playlist{}, false
	}
	return s.playlists[i], true
}

// PlaylistByName finds a playlist by display name using normalized name
// keys (case-insensitive, zero-width-safe).
func (s *Snapshot) PlaylistByName(name string) (Playlist, bool) {
	id, ok := s.nameIndex[flow.NameKey(name)]
	if !ok {
		return Playlist{}, false
	}
	return s.Playlist(id)
}

// NameIndex returns the name-key -> playlist-ID index.
func (s *Snapshot) NameIndex() map[string]string {
	index := make(map[string]string, len(s.nameIndex))
	for k, v := range s.nameIndex {
		index[k] = v
	}
	return index
}

// ArtistToPlaylists maps every artist ID to the sorted list of playlist IDs
// containing at least one of their tracks.
func (s *Snapshot) ArtistToPlaylists() map[string][]string {
	seen := make(map[string]map[string]bool)
	for _, p := range s.playlists {
		for _, t := range p.Tracks {
			for _, artistID := range t.ArtistIDs {
				if artistID == "" {
					continue
				}
				if seen[artistID] == nil {
					seen[artistID] = make(map[string]bool)
				}
				seen[artistID][p.ID] = true
			}
		}
	}

	out := make(map[string][]string, len(seen))
	for artistID, playlistIDs := range seen {
		ids := make([]string, 0, len(playlistIDs))
		for id := range playlistIDs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[artistID] = ids
	}
	return out
}

// SinglePlaylistArtists returns artists whose tracks appear, across the
// whole snapshot, in exactly one non-parent playlist. Parent playlists are
// aggregation targets, so membership there says nothing about where an
// artist belongs; exclusive membership in one ordinary playlist is a
// high-confidence routing signal.
func (s *Snapshot) SinglePlaylistArtists() map[string]string {
	parent := make(map[string]bool, len(s.playlists))
	for _, p := range s.playlists {
		if flow.Extract(p.Name).IsParent() {
			parent[p.ID] = true
		}
	}

	out := make(map[string]string)
	for artistID, playlistIDs := range s.ArtistToPlaylists() {
		var nonParent []string
		for _, id := range playlistIDs {
			if !parent[id] {
				nonParent = append(nonParent, id)
			}
		}
		if len(nonParent) == 1 {
			out[artistID] = nonParent[0]
		}
	}
	return out
}

// Stats computes snapshot statistics.
func (s *Snapshot) Stats() Statistics {
	stats := Statistics{Playlists: len(s.playlists)}
	artists := make(map[string]bool)
	for _, p := range s.playlists {
		stats.Tracks += len(p.Tracks)
		for _, t := range p.Tracks {
			for _, artistID := range t.ArtistIDs {
				if artistID != "" {
					artists[artistID] = true
				}
			}
		}
	}
	stats.UniqueArtists = len(artists)
	return stats
}
