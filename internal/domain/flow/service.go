package flow

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// maxMutationBatch is the Web API ceiling on URIs per mutation call.
const maxMutationBatch = 100

// TrackSource supplies the current track URIs of a playlist.
type TrackSource interface {
	PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error)
}

// Mutator applies playlist additions. Batches never exceed maxMutationBatch
// URIs per call; retry on transient failures is the implementation's duty.
type Mutator interface {
	AddItems(ctx context.Context, playlistID string, uris []string) error
}

// Failure records one parent playlist whose flow could not be applied.
type Failure struct {
	ParentID string
	Err      error
}

// Result summarizes one flow run.
type Result struct {
	RunID         string
	Cycles        [][]string
	AddedByParent map[string]int
	Failures      []Failure
}

// TotalAdded returns the number of tracks added across all parents.
func (r Result) TotalAdded() int {
	total := 0
	for _, n := range r.AddedByParent {
		total += n
	}
	return total
}

// Service propagates tracks from child playlists into their parents along
// the relationship graph.
type Service struct {
	tracks     TrackSource
	mutator    Mutator
	skipCycles bool
}

// NewService creates a flow service. When skipCycles is true, playlists
// involved in a detected cycle are excluded from the run.
func NewService(tracks TrackSource, mutator Mutator, skipCycles bool) *Service {
	return &Service{
		tracks:     tracks,
		mutator:    mutator,
		skipCycles: skipCycles,
	}
}

// Run builds the relationship graph over the given nodes, detects cycles
// and flows every child's tracks into its parents, deduplicating against
// the parent's current contents. A failure on one parent never aborts the
// others; failures are aggregated into the result.
func (s *Service) Run(ctx context.Context, nodes []Node) (Result, error) {
	result := Result{
		RunID:         uuid.NewString(),
		AddedByParent: make(map[string]int),
	}

	graph := BuildGraph(nodes)
	result.Cycles = DetectCycles(graph.ChildToParents)

	inCycle := make(map[string]bool)
	if s.skipCycles {
		for _, cycle := range result.Cycles {
			for _, id := range cycle {
				inCycle[id] = true
			}
		}
		if len(inCycle) > 0 {
			log.Warn().
				Int("cycles", len(result.Cycles)).
				Int("playlists", len(inCycle)).
				Msg("Skipping playlists involved in flow cycles")
		}
	}

	names := make(map[string]string, len(nodes))
	for _, n := range nodes {
		names[n.ID] = n.Name
	}

	parents := make([]string, 0, len(graph.ParentToChildren))
	for id := range graph.ParentToChildren {
		parents = append(parents, id)
	}
	sort.Strings(parents)

	for _, parentID := range parents {
		if inCycle[parentID] {
			continue
		}

		childIDs := make([]string, 0, len(graph.ParentToChildren[parentID]))
		for _, childID := range graph.ParentToChildren[parentID] {
			if !inCycle[childID] {
				childIDs = append(childIDs, childID)
			}
		}
		if len(childIDs) == 0 {
			continue
		}

		added, err := s.flowIntoParent(ctx, parentID, childIDs)
		if err != nil {
			log.Warn().Err(err).
				Str("parent", parentID).
				Str("name", names[parentID]).
				Msg("Flow into parent failed")
			result.Failures = append(result.Failures, Failure{ParentID: parentID, Err: err})
			continue
		}
		if added > 0 {
			log.Info().
				Str("parent", parentID).
				Str("name", names[parentID]).
				Int("added", added).
				Msg("Flowed tracks into parent")
			result.AddedByParent[parentID] = added
		}
	}

	return result, nil
}

// flowIntoParent collects the union of the children's tracks not yet in the
// parent and adds them in batches.
func (s *Service) flowIntoParent(ctx context.Context, parentID string, childIDs []string) (int, error) {
	existingURIs, err := s.tracks.PlaylistTrackURIs(ctx, parentID)
	if err != nil {
		return 0, fmt.Errorf("load parent tracks: %w", err)
	}
	existing := make(map[string]bool, len(existingURIs))
	for _, uri := range existingURIs {
		existing[uri] = true
	}

	var pending []string
	seen := make(map[string]bool)
	for _, childID := range childIDs {
		childURIs, err := s.tracks.PlaylistTrackURIs(ctx, childID)
		if err != nil {
			// A missing child contributes nothing; the rest still flow.
			log.Warn().Err(err).Str("child", childID).Msg("Failed to load child tracks")
			continue
		}
		for _, uri := range childURIs {
			if !existing[uri] && !seen[uri] {
				seen[uri] = true
				pending = append(pending, uri)
			}
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}

	added := 0
	for start := 0; start < len(pending); start += maxMutationBatch {
		end := start + maxMutationBatch
		if end > len(pending) {
			end = len(pending)
		}
		if err := s.mutator.AddItems(ctx, parentID, pending[start:end]); err != nil {
			return added, fmt.Errorf("add batch: %w", err)
		}
		added += end - start
	}
	return added, nil
}
