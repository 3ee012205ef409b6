package sorter

import (
	"context"
	"errors"
	"testing"
)

// fakeSnapshot implements SnapshotSource for testing.
type fakeSnapshot struct {
	playlists []PlaylistInfo
	createErr error
	created   []string
	nextID    int
}

func (f *fakeSnapshot) AuthoredPlaylists(context.Context) ([]PlaylistInfo, error) {
	return f.playlists, nil
}

func (f *fakeSnapshot) CreatePlaylist(_ context.Context, name, _ string) (PlaylistInfo, error) {
	if f.createErr != nil {
		return PlaylistInfo{}, f.createErr
	}
	f.nextID++
	p := PlaylistInfo{ID: "created-" + name, Name: name}
	f.created = append(f.created, name)
	f.playlists = append(f.playlists, p)
	return p, nil
}

// fakeCandidates implements CandidateSource for testing.
type fakeCandidates struct {
	tracks map[string][]Track
}

func (f *fakeCandidates) CandidateTracks(_ context.Context, playlistID string) ([]Track, error) {
	return f.tracks[playlistID], nil
}

// fakeFolderData implements FolderData for testing.
type fakeFolderData struct {
	tracks map[string][]Track
}

func (f *fakeFolderData) PlaylistTracks(playlistID string) ([]Track, bool) {
	tracks, ok := f.tracks[playlistID]
	return tracks, ok
}

// fakeNotifier records notifications.
type fakeNotifier struct {
	titles   []string
	messages []string
}

func (f *fakeNotifier) Notify(title, message string) {
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
}

func newTestService(snapshot *fakeSnapshot, candidates *fakeCandidates, data *fakeFolderData, mutator *fakeMutator, notifier Notifier, keep bool) *Service {
	applier := NewApplier(&fakeContents{}, mutator)
	return NewService(snapshot, candidates, data, applier, notifier, Config{
		StagingName:   "New",
		KeepInStaging: keep,
	})
}

func TestServiceRun_RoutesMatchedTracks(t *testing.T) {
	snapshot := &fakeSnapshot{playlists: []PlaylistInfo{
		{ID: "staging", Name: "New"},
		{ID: "pl1", Name: "Deep Cuts"},
		{ID: "aggH", Name: "「House」"},
	}}
	candidates := &fakeCandidates{tracks: map[string][]Track{
		"staging": {{URI: "uri:1", ArtistIDs: []string{"a1"}}},
	}}
	data := &fakeFolderData{tracks: map[string][]Track{
		"pl1": {{URI: "uri:cached", ArtistIDs: []string{"a1"}}},
	}}
	mutator := &fakeMutator{}
	notifier := &fakeNotifier{}

	service := newTestService(snapshot, candidates, data, mutator, notifier, false)

	summary, err := service.Run(context.Background(), map[string][]string{
		"House": {"Deep Cuts"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if summary.Added != 1 {
		t.Errorf("Expected 1 added, got %d", summary.Added)
	}
	if summary.Removed != 1 {
		t.Errorf("Expected 1 removed from staging, got %d", summary.Removed)
	}
	if len(mutator.addCalls) != 1 || mutator.addCalls[0].playlistID != "aggH" {
		t.Errorf("Expected addition to existing aggregator, got %v", mutator.addCalls)
	}
	if len(notifier.titles) != 1 {
		t.Errorf("Expected one notification, got %v", notifier.titles)
	}
}

func TestServiceRun_CreatesMissingAggregator(t *testing.T) {
	snapshot := &fakeSnapshot{playlists: []PlaylistInfo{
		{ID: "staging", Name: "New"},
		{ID: "pl1", Name: "Deep Cuts"},
	}}
	candidates := &fakeCandidates{tracks: map[string][]Track{
		"staging": {{URI: "uri:1", ArtistIDs: []string{"a1"}}},
	}}
	data := &fakeFolderData{tracks: map[string][]Track{
		"pl1": {{URI: "uri:cached", ArtistIDs: []string{"a1"}}},
	}}
	mutator := &fakeMutator{}

	service := newTestService(snapshot, candidates, data, mutator, nil, true)

	summary, err := service.Run(context.Background(), map[string][]string{
		"House": {"Deep Cuts"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(summary.CreatedAggregators) != 1 || summary.CreatedAggregators[0] != "「House」" {
		t.Errorf("Expected aggregator created, got %v", summary.CreatedAggregators)
	}
	if len(mutator.addCalls) != 1 || mutator.addCalls[0].playlistID != "created-「House」" {
		t.Errorf("Expected addition to created aggregator, got %v", mutator.addCalls)
	}
}

func TestServiceRun_MissingStagingPlaylistFails(t *testing.T) {
	snapshot := &fakeSnapshot{playlists: []PlaylistInfo{
		{ID: "pl1", Name: "Deep Cuts"},
	}}
	service := newTestService(snapshot, &fakeCandidates{}, &fakeFolderData{}, &fakeMutator{}, nil, true)

	_, err := service.Run(context.Background(), map[string][]string{})
	if err == nil {
		t.Fatal("Expected error when staging playlist is absent")
	}
}

func TestServiceRun_CollectsMissingFolderReferences(t *testing.T) {
	snapshot := &fakeSnapshot{playlists: []PlaylistInfo{
		{ID: "staging", Name: "New"},
	}}
	candidates := &fakeCandidates{}
	service := newTestService(snapshot, candidates, &fakeFolderData{}, &fakeMutator{}, nil, true)

	summary, err := service.Run(context.Background(), map[string][]string{
		"House": {"Gone Playlist"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(summary.MissingReferences) != 1 || summary.MissingReferences[0] != "House:Gone Playlist" {
		t.Errorf("Expected missing reference surfaced, got %v", summary.MissingReferences)
	}
}

func TestServiceRun_AggregatorCreateFailureSkipsFolder(t *testing.T) {
	snapshot := &fakeSnapshot{
		playlists: []PlaylistInfo{
			{ID: "staging", Name: "New"},
			{ID: "pl1", Name: "Deep Cuts"},
		},
		createErr: errors.New("api down"),
	}
	candidates := &fakeCandidates{tracks: map[string][]Track{
		"staging": {{URI: "uri:1", ArtistIDs: []string{"a1"}}},
	}}
	data := &fakeFolderData{tracks: map[string][]Track{
		"pl1": {{URI: "uri:cached", ArtistIDs: []string{"a1"}}},
	}}
	mutator := &fakeMutator{}

	service := newTestService(snapshot, candidates, data, mutator, nil, true)

	summary, err := service.Run(context.Background(), map[string][]string{
		"House": {"Deep Cuts"},
	})
	if err != nil {
		t.Fatalf("Expected run to continue despite create failure, got %v", err)
	}
	if summary.Added != 0 || len(mutator.addCalls) != 0 {
		t.Errorf("Expected folder without aggregator to contribute nothing, got %v", mutator.addCalls)
	}
}
