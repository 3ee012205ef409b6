package library

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultSyncConcurrency bounds parallel track-payload fetches during sync.
const DefaultSyncConcurrency = 4

// RemotePlaylist is the playlist metadata returned by the snapshot source,
// before track payloads are fetched.
type RemotePlaylist struct {
	ID         string
	Name       string
	OwnerID    string
	SnapshotID string
}

// Client is the subset of the Web API used during cache sync.
type Client interface {
	CurrentUserID(ctx context.Context) (string, error)
	AuthoredPlaylists(ctx context.Context) ([]RemotePlaylist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]Track, error)
}

// Store persists the library snapshot between runs.
type Store interface {
	PlaylistSnapshotID(playlistID string) (string, bool)
	SavePlaylist(p Playlist) error
	Playlists() ([]Playlist, error)
}

// SyncStats reports one sync pass.
type SyncStats struct {
	Total     int
	Refreshed int
	Skipped   int
	Failed    int
}

// Syncer refreshes the local cache from the remote account. Playlists whose
// remote snapshot ID matches the cached one are skipped without fetching
// their tracks.
type Syncer struct {
	client      Client
	store       Store
	concurrency int
}

// NewSyncer creates a syncer. concurrency <= 0 selects the default.
func NewSyncer(client Client, store Store) *Syncer {
	return &Syncer{
		client:      client,
		store:       store,
		concurrency: DefaultSyncConcurrency,
	}
}

// Sync fetches the authored playlists of the current account and upserts
// changed ones into the store. A failure on one playlist is logged and
// counted; the rest of the pass proceeds.
func (s *Syncer) Sync(ctx context.Context) (SyncStats, error) {
	var stats SyncStats

	ownerID, err := s.client.CurrentUserID(ctx)
	if err != nil {
		return stats, fmt.Errorf("resolve current user: %w", err)
	}

	remote, err := s.client.AuthoredPlaylists(ctx)
	if err != nil {
		return stats, fmt.Errorf("list playlists: %w", err)
	}

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	concurrency := s.concurrency
	if concurrency <= 0 {
		concurrency = DefaultSyncConcurrency
	}
	group.SetLimit(concurrency)

	for _, meta := range remote {
		if meta.OwnerID != ownerID {
			continue
		}
		mu.Lock()
		stats.Total++
		mu.Unlock()

		if cached, ok := s.store.PlaylistSnapshotID(meta.ID); ok && cached != "" && cached == meta.SnapshotID {
			mu.Lock()
			stats.Skipped++
			mu.Unlock()
			continue
		}

		meta := meta
		group.Go(func() error {
			tracks, err := s.client.PlaylistTracks(groupCtx, meta.ID)
			if err != nil {
				log.Warn().Err(err).
					Str("playlist", meta.ID).
					Str("name", meta.Name).
					Msg("Failed to fetch playlist tracks")
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return nil
			}

			playlist := Playlist{
				ID:         meta.ID,
				Name:       meta.Name,
				OwnerID:    meta.OwnerID,
				SnapshotID: meta.SnapshotID,
				Tracks:     tracks,
			}
			if err := s.store.SavePlaylist(playlist); err != nil {
				log.Warn().Err(err).
					Str("playlist", meta.ID).
					Msg("Failed to persist playlist")
				mu.Lock()
				stats.Failed++
				mu.Unlock()
				return nil
			}

			mu.Lock()
			stats.Refreshed++
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return stats, err
	}

	log.Info().
		Int("total", stats.Total).
		Int("refreshed", stats.Refreshed).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("Library cache sync completed")
	return stats, nil
}

// LoadSnapshot reads every cached playlist from the store into an
// in-memory snapshot.
func LoadSnapshot(store Store) (*Snapshot, error) {
	playlists, err := store.Playlists()
	if err != nil {
		return nil, fmt.Errorf("load cached playlists: %w", err)
	}
	return NewSnapshot(playlists), nil
}
