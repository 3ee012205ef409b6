package cache

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func openTestDB(t *testing.T) (*DB, *DAO) {
	t.Helper()
	db := NewDB(filepath.Join(t.TempDir(), "library.db"))
	if err := db.Open(); err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, NewDAO(db)
}

func TestDAO_SaveAndGetPlaylist(t *testing.T) {
	_, dao := openTestDB(t)

	p := CachedPlaylist{
		ID:         "pl1",
		Name:       "Deep Cuts",
		OwnerID:    "me",
		SnapshotID: "s1",
		SyncedAt:   time.Now().UTC().Truncate(time.Second),
	}
	tracks := []CachedTrack{
		{URI: "uri:1", ID: "t1", Name: "First", ArtistIDs: []string{"a1", "a2"}},
		{URI: "uri:2", ID: "t2", Name: "Second", ArtistIDs: []string{"a2"}},
	}

	if err := dao.SavePlaylist(p, tracks); err != nil {
		t.Fatalf("Failed to save playlist: %v", err)
	}

	got, ok, err := dao.GetPlaylist("pl1")
	if err != nil || !ok {
		t.Fatalf("Expected cached playlist, got ok=%v err=%v", ok, err)
	}
	if got.Name != "Deep Cuts" || got.SnapshotID != "s1" {
		t.Errorf("Unexpected playlist: %+v", got)
	}

	gotTracks, err := dao.PlaylistTracks("pl1")
	if err != nil {
		t.Fatalf("Failed to load tracks: %v", err)
	}
	if len(gotTracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(gotTracks))
	}
	if !reflect.DeepEqual(gotTracks[0].ArtistIDs, []string{"a1", "a2"}) {
		t.Errorf("Expected artist credits in order, got %v", gotTracks[0].ArtistIDs)
	}
}

func TestDAO_SavePlaylistReplacesMembership(t *testing.T) {
	_, dao := openTestDB(t)

	p := CachedPlaylist{ID: "pl1", Name: "Deep Cuts", SnapshotID: "s1"}
	if err := dao.SavePlaylist(p, []CachedTrack{
		{URI: "uri:1", ArtistIDs: []string{"a1"}},
		{URI: "uri:2", ArtistIDs: []string{"a2"}},
	}); err != nil {
		t.Fatalf("Failed to save playlist: %v", err)
	}

	p.SnapshotID = "s2"
	if err := dao.SavePlaylist(p, []CachedTrack{
		{URI: "uri:2", ArtistIDs: []string{"a2"}},
	}); err != nil {
		t.Fatalf("Failed to resave playlist: %v", err)
	}

	tracks, err := dao.PlaylistTracks("pl1")
	if err != nil {
		t.Fatalf("Failed to load tracks: %v", err)
	}
	if len(tracks) != 1 || tracks[0].URI != "uri:2" {
		t.Errorf("Expected membership replaced, got %+v", tracks)
	}

	if id, ok := dao.SnapshotID("pl1"); !ok || id != "s2" {
		t.Errorf("Expected updated snapshot ID, got %q ok=%v", id, ok)
	}
}

func TestDAO_SavePlaylistToleratesDuplicateEntries(t *testing.T) {
	_, dao := openTestDB(t)

	// A staging inbox can hold the same track twice, and a credit list
	// can repeat an artist. Neither may fail the save.
	p := CachedPlaylist{ID: "pl1", Name: "New", SnapshotID: "s1"}
	err := dao.SavePlaylist(p, []CachedTrack{
		{URI: "spotify:track:1", ID: "t1", Name: "First", ArtistIDs: []string{"a1", "a1"}},
		{URI: "spotify:track:2", ID: "t2", Name: "Second", ArtistIDs: []string{"a2"}},
		{URI: "spotify:track:1", ID: "t1", Name: "First", ArtistIDs: []string{"a1"}},
	})
	if err != nil {
		t.Fatalf("Expected duplicated entries to save, got %v", err)
	}

	tracks, err := dao.PlaylistTracks("pl1")
	if err != nil {
		t.Fatalf("Failed to load tracks: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("Expected duplicate membership collapsed to 2 tracks, got %d", len(tracks))
	}
	if tracks[0].URI != "spotify:track:1" || tracks[1].URI != "spotify:track:2" {
		t.Errorf("Expected first occurrence to keep its position, got %+v", tracks)
	}
	if !reflect.DeepEqual(tracks[0].ArtistIDs, []string{"a1"}) {
		t.Errorf("Expected repeated artist credit collapsed, got %v", tracks[0].ArtistIDs)
	}
}

func TestDAO_SnapshotIDMissing(t *testing.T) {
	_, dao := openTestDB(t)

	if _, ok := dao.SnapshotID("nope"); ok {
		t.Error("Expected no snapshot ID for unknown playlist")
	}
}

func TestDAO_PlaylistsSortedByName(t *testing.T) {
	_, dao := openTestDB(t)

	for _, p := range []CachedPlaylist{
		{ID: "pl2", Name: "Warehouse"},
		{ID: "pl1", Name: "Ambient"},
	} {
		if err := dao.SavePlaylist(p, nil); err != nil {
			t.Fatalf("Failed to save playlist: %v", err)
		}
	}

	playlists, err := dao.Playlists()
	if err != nil {
		t.Fatalf("Failed to list playlists: %v", err)
	}
	if len(playlists) != 2 || playlists[0].Name != "Ambient" {
		t.Errorf("Expected name-ordered playlists, got %+v", playlists)
	}
}

func TestDAO_HasPlaylistTracks(t *testing.T) {
	_, dao := openTestDB(t)

	if err := dao.SavePlaylist(CachedPlaylist{ID: "empty", Name: "Empty"}, nil); err != nil {
		t.Fatalf("Failed to save playlist: %v", err)
	}

	if !dao.HasPlaylistTracks("empty") {
		t.Error("Expected empty payload to count as cached")
	}
	if dao.HasPlaylistTracks("unknown") {
		t.Error("Expected unknown playlist to report no cached payload")
	}
}

func TestDB_SchemaVersionPersisted(t *testing.T) {
	db, _ := openTestDB(t)

	if v := db.getSchemaVersion(); v != CurrentSchemaVersion {
		t.Errorf("Expected schema version %q, got %q", CurrentSchemaVersion, v)
	}
}
