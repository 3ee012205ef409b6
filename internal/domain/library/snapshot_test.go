package library

import (
	"reflect"
	"testing"
)

func testPlaylists() []Playlist {
	return []Playlist{
		{
			ID:   "pl1",
			Name: "Deep Cuts",
			Tracks: []Track{
				{URI: "uri:1", ArtistIDs: []string{"a1", "a2"}},
			},
		},
		{
			ID:   "pl2",
			Name: "Warehouse",
			Tracks: []Track{
				{URI: "uri:2", ArtistIDs: []string{"a2"}},
				{URI: "uri:3", ArtistIDs: []string{"a3"}},
			},
		},
		{
			ID:   "agg",
			Name: "🜀 Everything",
			Tracks: []Track{
				{URI: "uri:1", ArtistIDs: []string{"a1", "a2"}},
				{URI: "uri:3", ArtistIDs: []string{"a3"}},
			},
		},
	}
}

func TestSnapshot_PlaylistByName(t *testing.T) {
	s := NewSnapshot(testPlaylists())

	p, ok := s.PlaylistByName("deep cuts")
	if !ok || p.ID != "pl1" {
		t.Errorf("Expected pl1 by case-insensitive name, got %+v ok=%v", p, ok)
	}

	if _, ok := s.PlaylistByName("does not exist"); ok {
		t.Error("Expected lookup miss for unknown name")
	}
}

func TestSnapshot_ArtistToPlaylists(t *testing.T) {
	s := NewSnapshot(testPlaylists())

	mapping := s.ArtistToPlaylists()
	if !reflect.DeepEqual(mapping["a2"], []string{"agg", "pl1", "pl2"}) {
		t.Errorf("Expected a2 in all three playlists, got %v", mapping["a2"])
	}
	if !reflect.DeepEqual(mapping["a1"], []string{"agg", "pl1"}) {
		t.Errorf("Expected a1 in agg and pl1, got %v", mapping["a1"])
	}
}

func TestSnapshot_SinglePlaylistArtists_ExcludesParents(t *testing.T) {
	s := NewSnapshot(testPlaylists())

	single := s.SinglePlaylistArtists()

	// a1 appears in pl1 and the parent playlist; the parent does not
	// count, so a1 is exclusive to pl1.
	if single["a1"] != "pl1" {
		t.Errorf("Expected a1 exclusive to pl1, got %q", single["a1"])
	}
	// a3 is exclusive to pl2 for the same reason.
	if single["a3"] != "pl2" {
		t.Errorf("Expected a3 exclusive to pl2, got %q", single["a3"])
	}
	// a2 appears in two ordinary playlists.
	if _, ok := single["a2"]; ok {
		t.Error("Expected a2 not to be a single-playlist artist")
	}
}

func TestSnapshot_Stats(t *testing.T) {
	s := NewSnapshot(testPlaylists())

	stats := s.Stats()
	if stats.Playlists != 3 {
		t.Errorf("Expected 3 playlists, got %d", stats.Playlists)
	}
	if stats.Tracks != 5 {
		t.Errorf("Expected 5 track entries, got %d", stats.Tracks)
	}
	if stats.UniqueArtists != 3 {
		t.Errorf("Expected 3 unique artists, got %d", stats.UniqueArtists)
	}
}
