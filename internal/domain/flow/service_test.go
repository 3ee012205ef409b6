package flow

import (
	"context"
	"errors"
	"testing"
)

// fakeTrackSource implements TrackSource for testing.
type fakeTrackSource struct {
	uris map[string][]string
	errs map[string]error
}

func (f *fakeTrackSource) PlaylistTrackURIs(_ context.Context, playlistID string) ([]string, error) {
	if err := f.errs[playlistID]; err != nil {
		return nil, err
	}
	return f.uris[playlistID], nil
}

// fakeMutator implements Mutator and records every add call.
type fakeMutator struct {
	calls []addCall
	errs  map[string]error
}

type addCall struct {
	playlistID string
	uris       []string
}

func (f *fakeMutator) AddItems(_ context.Context, playlistID string, uris []string) error {
	if err := f.errs[playlistID]; err != nil {
		return err
	}
	f.calls = append(f.calls, addCall{playlistID, uris})
	return nil
}

func TestServiceRun_FlowsChildTracksIntoParent(t *testing.T) {
	tracks := &fakeTrackSource{uris: map[string][]string{
		"parent": {"uri:existing"},
		"child":  {"uri:existing", "uri:new"},
	}}
	mutator := &fakeMutator{}
	service := NewService(tracks, mutator, true)

	nodes := []Node{
		NewNode("parent", "🜀 Collection"),
		NewNode("child", "Daily Mix 🜀"),
	}

	result, err := service.Run(context.Background(), nodes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.AddedByParent["parent"] != 1 {
		t.Errorf("Expected 1 track flowed, got %d", result.AddedByParent["parent"])
	}
	if len(mutator.calls) != 1 || mutator.calls[0].uris[0] != "uri:new" {
		t.Errorf("Expected single add of uri:new, got %v", mutator.calls)
	}
}

func TestServiceRun_DeduplicatesAcrossChildren(t *testing.T) {
	tracks := &fakeTrackSource{uris: map[string][]string{
		"parent": {},
		"c1":     {"uri:shared", "uri:one"},
		"c2":     {"uri:shared", "uri:two"},
	}}
	mutator := &fakeMutator{}
	service := NewService(tracks, mutator, true)

	nodes := []Node{
		NewNode("parent", "🜀 Collection"),
		NewNode("c1", "Mix One 🜀"),
		NewNode("c2", "Mix Two 🜀"),
	}

	result, err := service.Run(context.Background(), nodes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.AddedByParent["parent"] != 3 {
		t.Errorf("Expected 3 unique tracks flowed, got %d", result.AddedByParent["parent"])
	}
}

func TestServiceRun_SkipsCyclePlaylists(t *testing.T) {
	tracks := &fakeTrackSource{uris: map[string][]string{
		"a": {"uri:a"},
		"b": {"uri:b"},
	}}
	mutator := &fakeMutator{}
	service := NewService(tracks, mutator, true)

	nodes := []Node{
		NewNode("a", "🜀 Cycle A 🜁"),
		NewNode("b", "🜁 Cycle B 🜀"),
	}

	result, err := service.Run(context.Background(), nodes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Cycles) != 1 {
		t.Errorf("Expected the cycle reported, got %v", result.Cycles)
	}
	if len(mutator.calls) != 0 {
		t.Errorf("Expected no mutations for cyclic playlists, got %v", mutator.calls)
	}
}

func TestServiceRun_CyclesFlowWhenSkipDisabled(t *testing.T) {
	tracks := &fakeTrackSource{uris: map[string][]string{
		"a": {"uri:a"},
		"b": {"uri:b"},
	}}
	mutator := &fakeMutator{}
	service := NewService(tracks, mutator, false)

	nodes := []Node{
		NewNode("a", "🜀 Cycle A 🜁"),
		NewNode("b", "🜁 Cycle B 🜀"),
	}

	result, err := service.Run(context.Background(), nodes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Cycles) != 1 {
		t.Errorf("Expected the cycle still reported, got %v", result.Cycles)
	}
	if result.TotalAdded() != 2 {
		t.Errorf("Expected both directions applied with skip disabled, got %d", result.TotalAdded())
	}
}

func TestServiceRun_ParentFailureDoesNotAbortOthers(t *testing.T) {
	tracks := &fakeTrackSource{
		uris: map[string][]string{
			"p2": {},
			"c1": {"uri:1"},
			"c2": {"uri:2"},
		},
		errs: map[string]error{"p1": errors.New("unavailable")},
	}
	mutator := &fakeMutator{}
	service := NewService(tracks, mutator, true)

	nodes := []Node{
		NewNode("p1", "🜀 Receiver One"),
		NewNode("p2", "🜁 Receiver Two"),
		NewNode("c1", "Donor One 🜀"),
		NewNode("c2", "Donor Two 🜁"),
	}

	result, err := service.Run(context.Background(), nodes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Failures) != 1 || result.Failures[0].ParentID != "p1" {
		t.Errorf("Expected failure recorded for p1, got %v", result.Failures)
	}
	if result.AddedByParent["p2"] != 1 {
		t.Errorf("Expected p2 still flowed, got %+v", result.AddedByParent)
	}
}

func TestServiceRun_NoopWhenParentUpToDate(t *testing.T) {
	tracks := &fakeTrackSource{uris: map[string][]string{
		"parent": {"uri:1"},
		"child":  {"uri:1"},
	}}
	mutator := &fakeMutator{}
	service := NewService(tracks, mutator, true)

	nodes := []Node{
		NewNode("parent", "🜀 Collection"),
		NewNode("child", "Daily Mix 🜀"),
	}

	result, err := service.Run(context.Background(), nodes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.TotalAdded() != 0 || len(mutator.calls) != 0 {
		t.Errorf("Expected a no-op run, got %+v", result)
	}
}
