package sorter

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
)

// MaxBatchSize is the Web API ceiling on URIs per mutation call. If this
// code is ever retargeted to a different service, re-derive the constant
// from that service's documented limits.
const MaxBatchSize = 100

// ContentsSource supplies a playlist's current track URIs for
// deduplication.
type ContentsSource interface {
	PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error)
}

// Mutator applies playlist mutations. Both calls accept at most
// MaxBatchSize URIs; transient-failure retry is the implementation's duty.
type Mutator interface {
	AddItems(ctx context.Context, playlistID string, uris []string) error
	RemoveAllOccurrences(ctx context.Context, playlistID string, uris []string) error
}

// BatchFailure records one failed mutation batch. Failed batches are not
// counted as added or removed; independent batches still proceed.
type BatchFailure struct {
	PlaylistID string
	Op         string // "read", "add" or "remove"
	URIs       []string
	Err        error
}

// ApplyResult summarizes one application pass. Partial completion is a
// visible outcome, never hidden: every failure is recorded here.
type ApplyResult struct {
	Added    int
	Removed  int
	Failures []BatchFailure
}

// Applier executes an AdditionPlan against the external mutation interface.
type Applier struct {
	contents ContentsSource
	mutator  Mutator
}

// NewApplier creates a plan applier.
func NewApplier(contents ContentsSource, mutator Mutator) *Applier {
	return &Applier{contents: contents, mutator: mutator}
}

// Apply deduplicates each destination's pending URIs against its current
// contents, submits the missing ones in batches of at most MaxBatchSize,
// and, unless keepInSource is set, removes every matched URI from the
// source playlist. Removal is keyed on match, not on successful addition: a
// track already present in its destination is still classified, so it still
// leaves the source. Re-running an unchanged plan adds and removes nothing.
func (a *Applier) Apply(ctx context.Context, plan AdditionPlan, sourceID string, keepInSource bool) ApplyResult {
	var result ApplyResult

	destinations := make([]string, 0, len(plan))
	for id := range plan {
		destinations = append(destinations, id)
	}
	sort.Strings(destinations)

	removalSet := make(map[string]bool)

	for _, destinationID := range destinations {
		pending := plan[destinationID]
		if len(pending) == 0 {
			continue
		}

		// Every matched URI is eligible for source removal, whether or not
		// its addition turns out to be a no-op below.
		if !keepInSource {
			for _, uri := range pending {
				removalSet[uri] = true
			}
		}

		existingURIs, err := a.contents.PlaylistTrackURIs(ctx, destinationID)
		if err != nil {
			log.Warn().Err(err).
				Str("playlist", destinationID).
				Msg("Failed to read destination contents, skipping destination")
			result.Failures = append(result.Failures, BatchFailure{
				PlaylistID: destinationID, Op: "read", Err: err,
			})
			continue
		}
		existing := make(map[string]bool, len(existingURIs))
		for _, uri := range existingURIs {
			existing[uri] = true
		}

		var missing []string
		for _, uri := range pending {
			if !existing[uri] {
				missing = append(missing, uri)
			}
		}
		if len(missing) == 0 {
			log.Debug().
				Str("playlist", destinationID).
				Int("pending", len(pending)).
				Msg("Destination already contains all pending tracks")
			continue
		}

		for _, batch := range batches(missing) {
			if err := a.mutator.AddItems(ctx, destinationID, batch); err != nil {
				log.Warn().Err(err).
					Str("playlist", destinationID).
					Int("batch_size", len(batch)).
					Msg("Add batch failed")
				result.Failures = append(result.Failures, BatchFailure{
					PlaylistID: destinationID, Op: "add", URIs: batch, Err: err,
				})
				continue
			}
			result.Added += len(batch)
		}
	}

	if !keepInSource && len(removalSet) > 0 {
		removal := make([]string, 0, len(removalSet))
		for uri := range removalSet {
			removal = append(removal, uri)
		}
		sort.Strings(removal)

		for _, batch := range batches(removal) {
			if err := a.mutator.RemoveAllOccurrences(ctx, sourceID, batch); err != nil {
				log.Warn().Err(err).
					Str("playlist", sourceID).
					Int("batch_size", len(batch)).
					Msg("Remove batch failed")
				result.Failures = append(result.Failures, BatchFailure{
					PlaylistID: sourceID, Op: "remove", URIs: batch, Err: err,
				})
				continue
			}
			result.Removed += len(batch)
		}
	}

	return result
}

// batches splits uris into chunks of at most MaxBatchSize, preserving order.
func batches(uris []string) [][]string {
	var out [][]string
	for start := 0; start < len(uris); start += MaxBatchSize {
		end := start + MaxBatchSize
		if end > len(uris) {
			end = len(uris)
		}
		out = append(out, uris[start:end])
	}
	return out
}
