package sorter

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/meridian-playlist-curator/internal/domain/flow"
)

// ResolveFolderPlaylists maps the configured folder -> playlist display
// names onto playlist IDs using a normalized name index (name key -> ID).
// Names absent from the snapshot are collected as "folder:name" references
// and surfaced to the caller instead of failing the run.
func ResolveFolderPlaylists(folders map[string][]string, nameIndex map[string]string) (map[string][]string, []string) {
	resolved := make(map[string][]string, len(folders))
	var missing []string

	for folder, names := range folders {
		ids := make([]string, 0, len(names))
		for _, displayName := range names {
			if id, ok := nameIndex[flow.NameKey(displayName)]; ok {
				ids = append(ids, id)
			} else {
				missing = append(missing, fmt.Sprintf("%s:%s", folder, displayName))
			}
		}
		resolved[folder] = ids
	}
	return resolved, missing
}

// BuildFolderArtistIndex unions the artist IDs of every track in every
// playlist assigned to a folder. Playlists without cached track data are
// skipped with a warning; they contribute nothing.
func BuildFolderArtistIndex(folderPlaylists map[string][]string, playlistTracks map[string][]Track) FolderArtistIndex {
	index := make(FolderArtistIndex, len(folderPlaylists))

	for folder, playlistIDs := range folderPlaylists {
		artists := make(ArtistSet)
		for _, playlistID := range playlistIDs {
			tracks, ok := playlistTracks[playlistID]
			if !ok {
				log.Warn().
					Str("folder", folder).
					Str("playlist", playlistID).
					Msg("No cached track data for folder playlist, skipping")
				continue
			}
			for _, track := range tracks {
				for _, artistID := range track.ArtistIDs {
					if artistID != "" {
						artists[artistID] = struct{}{}
					}
				}
			}
		}
		index[folder] = artists
	}
	return index
}
