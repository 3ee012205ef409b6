package sorter

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/meridian-playlist-curator/internal/domain/flow"
)

// PlaylistInfo identifies one playlist in the account snapshot.
type PlaylistInfo struct {
	ID   string
	Name string
}

// SnapshotSource lists the playlists authored by the automation account and
// creates aggregator playlists on demand.
type SnapshotSource interface {
	AuthoredPlaylists(ctx context.Context) ([]PlaylistInfo, error)
	CreatePlaylist(ctx context.Context, name, description string) (PlaylistInfo, error)
}

// CandidateSource supplies the staging playlist's candidate tracks, already
// filtered of local-only items and tracks without stable IDs.
type CandidateSource interface {
	CandidateTracks(ctx context.Context, playlistID string) ([]Track, error)
}

// FolderData supplies cached track payloads for folder playlists. The
// second return is false when no cached data exists for the playlist.
type FolderData interface {
	PlaylistTracks(playlistID string) ([]Track, bool)
}

// Notifier receives the end-of-run report.
type Notifier interface {
	Notify(title, message string)
}

// Config holds the folder-sort run parameters.
type Config struct {
	// StagingName is the display name of the staging inbox playlist.
	StagingName string

	// KeepInStaging leaves matched tracks in the staging playlist instead
	// of removing them after routing.
	KeepInStaging bool
}

// RunSummary reports one folder-sort run.
type RunSummary struct {
	RunID              string
	Candidates         int
	Matched            int
	Added              int
	Removed            int
	CreatedAggregators []string
	MissingReferences  []string
	Provenance         ProvenanceMap
	Failures           []BatchFailure
}

// Service orchestrates a folder-sort run: resolve folder playlists, build
// the artist index, plan additions for the staging candidates and apply the
// plan.
type Service struct {
	snapshot   SnapshotSource
	candidates CandidateSource
	data       FolderData
	applier    *Applier
	notifier   Notifier
	cfg        Config
}

// NewService creates a folder-sort service. notifier may be nil.
func NewService(snapshot SnapshotSource, candidates CandidateSource, data FolderData, applier *Applier, notifier Notifier, cfg Config) *Service {
	return &Service{
		snapshot:   snapshot,
		candidates: candidates,
		data:       data,
		applier:    applier,
		notifier:   notifier,
		cfg:        cfg,
	}
}

// Run executes one folder-sort pass over the given folder -> playlist name
// assignment.
func (s *Service) Run(ctx context.Context, folders map[string][]string) (RunSummary, error) {
	summary := RunSummary{RunID: uuid.NewString()}

	playlists, err := s.snapshot.AuthoredPlaylists(ctx)
	if err != nil {
		return summary, fmt.Errorf("list authored playlists: %w", err)
	}

	nameIndex := make(map[string]string, len(playlists))
	stagingID := ""
	stagingKey := flow.NameKey(s.cfg.StagingName)
	for _, p := range playlists {
		nameIndex[flow.NameKey(p.Name)] = p.ID
		if flow.NameKey(p.Name) == stagingKey {
			stagingID = p.ID
		}
	}
	if stagingID == "" {
		return summary, fmt.Errorf("staging playlist %q not found in snapshot", s.cfg.StagingName)
	}

	resolved, missing := ResolveFolderPlaylists(folders, nameIndex)
	summary.MissingReferences = missing
	if len(missing) > 0 {
		log.Warn().
			Strs("references", missing).
			Msg("Folder configuration references playlists absent from the snapshot")
	}

	playlistTracks := make(map[string][]Track)
	for _, playlistIDs := range resolved {
		for _, playlistID := range playlistIDs {
			if _, loaded := playlistTracks[playlistID]; loaded {
				continue
			}
			if tracks, ok := s.data.PlaylistTracks(playlistID); ok {
				playlistTracks[playlistID] = tracks
			}
		}
	}

	index := BuildFolderArtistIndex(resolved, playlistTracks)

	destinations, created := s.resolveAggregators(ctx, playlists, folders)
	summary.CreatedAggregators = created

	candidates, err := s.candidates.CandidateTracks(ctx, stagingID)
	if err != nil {
		return summary, fmt.Errorf("fetch staging tracks: %w", err)
	}
	summary.Candidates = len(candidates)

	plan, provenance := PlanAdditions(candidates, index, destinations)
	summary.Matched = len(provenance)
	summary.Provenance = provenance

	result := s.applier.Apply(ctx, plan, stagingID, s.cfg.KeepInStaging)
	summary.Added = result.Added
	summary.Removed = result.Removed
	summary.Failures = result.Failures

	log.Info().
		Str("run_id", summary.RunID).
		Int("candidates", summary.Candidates).
		Int("matched", summary.Matched).
		Int("added", summary.Added).
		Int("removed", summary.Removed).
		Int("failures", len(summary.Failures)).
		Msg("Folder sort completed")

	s.notify(summary)
	return summary, nil
}

// resolveAggregators finds or creates the aggregator playlist for every
// folder and returns folder -> destination ID plus the names created. A
// folder whose aggregator cannot be created is left without a destination
// and contributes nothing to the plan.
func (s *Service) resolveAggregators(ctx context.Context, playlists []PlaylistInfo, folders map[string][]string) (map[string]string, []string) {
	destinations := make(map[string]string, len(folders))
	var created []string

	names := make([]string, 0, len(folders))
	for folder := range folders {
		names = append(names, folder)
	}
	sort.Strings(names)

	for _, folder := range names {
		found := ""
		for _, p := range playlists {
			if IsAggregatorFor(p.Name, folder) {
				found = p.ID
				break
			}
		}
		if found != "" {
			destinations[folder] = found
			continue
		}

		displayName := AggregatorName(folder)
		p, err := s.snapshot.CreatePlaylist(ctx, displayName, "Auto aggregator for "+folder)
		if err != nil {
			log.Warn().Err(err).
				Str("folder", folder).
				Msg("Failed to create aggregator playlist")
			continue
		}
		log.Info().Str("folder", folder).Str("playlist", p.ID).Msg("Created aggregator playlist")
		destinations[folder] = p.ID
		created = append(created, displayName)
	}
	return destinations, created
}

func (s *Service) notify(summary RunSummary) {
	if s.notifier == nil {
		return
	}
	message := fmt.Sprintf(
		"%d candidates, %d matched, %d added, %d removed, %d failures",
		summary.Candidates, summary.Matched, summary.Added, summary.Removed, len(summary.Failures),
	)
	if len(summary.MissingReferences) > 0 {
		message += fmt.Sprintf(", %d unresolved folder references", len(summary.MissingReferences))
	}
	s.notifier.Notify("Folder sort", message)
}
