package sorter

import (
	"reflect"
	"sort"
	"testing"
)

func TestResolveFolderPlaylists_ResolvesByNameKey(t *testing.T) {
	folders := map[string][]string{
		"House": {"Deep Cuts", "Warehouse"},
	}
	nameIndex := map[string]string{
		"deep cuts": "pl1",
		"warehouse": "pl2",
	}

	resolved, missing := ResolveFolderPlaylists(folders, nameIndex)

	if !reflect.DeepEqual(resolved["House"], []string{"pl1", "pl2"}) {
		t.Errorf("Expected both playlists resolved, got %v", resolved["House"])
	}
	if len(missing) != 0 {
		t.Errorf("Expected no missing references, got %v", missing)
	}
}

func TestResolveFolderPlaylists_CollectsMissingReferences(t *testing.T) {
	folders := map[string][]string{
		"House": {"Deep Cuts", "Gone Playlist"},
	}
	nameIndex := map[string]string{"deep cuts": "pl1"}

	resolved, missing := ResolveFolderPlaylists(folders, nameIndex)

	if !reflect.DeepEqual(resolved["House"], []string{"pl1"}) {
		t.Errorf("Expected one resolved playlist, got %v", resolved["House"])
	}
	if !reflect.DeepEqual(missing, []string{"House:Gone Playlist"}) {
		t.Errorf("Expected missing reference recorded, got %v", missing)
	}
}

func TestBuildFolderArtistIndex_UnionsArtists(t *testing.T) {
	folderPlaylists := map[string][]string{
		"House": {"pl1", "pl2"},
	}
	playlistTracks := map[string][]Track{
		"pl1": {
			{URI: "uri:1", ArtistIDs: []string{"a1", "a2"}},
		},
		"pl2": {
			{URI: "uri:2", ArtistIDs: []string{"a2", "a3"}},
		},
	}

	index := BuildFolderArtistIndex(folderPlaylists, playlistTracks)

	got := make([]string, 0, len(index["House"]))
	for id := range index["House"] {
		got = append(got, id)
	}
	sort.Strings(got)
	if !reflect.DeepEqual(got, []string{"a1", "a2", "a3"}) {
		t.Errorf("Expected union of artists, got %v", got)
	}
}

func TestBuildFolderArtistIndex_SkipsPlaylistsWithoutData(t *testing.T) {
	folderPlaylists := map[string][]string{
		"House": {"pl1", "missing"},
	}
	playlistTracks := map[string][]Track{
		"pl1": {{URI: "uri:1", ArtistIDs: []string{"a1"}}},
	}

	index := BuildFolderArtistIndex(folderPlaylists, playlistTracks)

	if len(index["House"]) != 1 {
		t.Errorf("Expected only cached playlist to contribute, got %v", index["House"])
	}
}

func TestBuildFolderArtistIndex_EmptyFolder(t *testing.T) {
	index := BuildFolderArtistIndex(map[string][]string{"Empty": nil}, nil)

	artists, ok := index["Empty"]
	if !ok {
		t.Fatal("Expected folder present in index")
	}
	if len(artists) != 0 {
		t.Errorf("Expected empty artist set, got %v", artists)
	}
}

func TestBuildFolderArtistIndex_IgnoresEmptyArtistIDs(t *testing.T) {
	index := BuildFolderArtistIndex(
		map[string][]string{"House": {"pl1"}},
		map[string][]Track{"pl1": {{URI: "uri:1", ArtistIDs: []string{"", "a1"}}}},
	)

	if len(index["House"]) != 1 {
		t.Errorf("Expected empty artist IDs dropped, got %v", index["House"])
	}
}
