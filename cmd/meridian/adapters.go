package main

import (
	"context"
	"time"

	"github.com/edumarques81/meridian-playlist-curator/internal/domain/library"
	"github.com/edumarques81/meridian-playlist-curator/internal/domain/sorter"
	"github.com/edumarques81/meridian-playlist-curator/internal/infra/cache"
	"github.com/edumarques81/meridian-playlist-curator/internal/infra/spotify"
)

// libraryClient adapts the Web API client to the sync interface.
type libraryClient struct {
	client *spotify.Client
}

func (a *libraryClient) CurrentUserID(ctx context.Context) (string, error) {
	return a.client.CurrentUserID(ctx)
}

func (a *libraryClient) AuthoredPlaylists(ctx context.Context) ([]library.RemotePlaylist, error) {
	playlists, err := a.client.AuthoredPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]library.RemotePlaylist, 0, len(playlists))
	for _, p := range playlists {
		out = append(out, library.RemotePlaylist{
			ID:         p.ID,
			Name:       p.Name,
			OwnerID:    p.OwnerID,
			SnapshotID: p.SnapshotID,
		})
	}
	return out, nil
}

func (a *libraryClient) PlaylistTracks(ctx context.Context, playlistID string) ([]library.Track, error) {
	tracks, err := a.client.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return toLibraryTracks(tracks), nil
}

func toLibraryTracks(tracks []spotify.Track) []library.Track {
	out := make([]library.Track, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, library.Track{
			ID:        t.ID,
			URI:       t.URI,
			Name:      t.Name,
			ArtistIDs: t.ArtistIDs,
		})
	}
	return out
}

// cacheStore adapts the SQLite DAO to the library store interface.
type cacheStore struct {
	dao *cache.DAO
}

func (a *cacheStore) PlaylistSnapshotID(playlistID string) (string, bool) {
	return a.dao.SnapshotID(playlistID)
}

func (a *cacheStore) SavePlaylist(p library.Playlist) error {
	cached := cache.CachedPlaylist{
		ID:         p.ID,
		Name:       p.Name,
		OwnerID:    p.OwnerID,
		SnapshotID: p.SnapshotID,
		SyncedAt:   time.Now().UTC(),
	}
	tracks := make([]cache.CachedTrack, 0, len(p.Tracks))
	for _, t := range p.Tracks {
		tracks = append(tracks, cache.CachedTrack{
			URI:       t.URI,
			ID:        t.ID,
			Name:      t.Name,
			ArtistIDs: t.ArtistIDs,
		})
	}
	return a.dao.SavePlaylist(cached, tracks)
}

func (a *cacheStore) Playlists() ([]library.Playlist, error) {
	cached, err := a.dao.Playlists()
	if err != nil {
		return nil, err
	}
	out := make([]library.Playlist, 0, len(cached))
	for _, p := range cached {
		tracks, err := a.dao.PlaylistTracks(p.ID)
		if err != nil {
			return nil, err
		}
		playlist := library.Playlist{
			ID:         p.ID,
			Name:       p.Name,
			OwnerID:    p.OwnerID,
			SnapshotID: p.SnapshotID,
		}
		for _, t := range tracks {
			playlist.Tracks = append(playlist.Tracks, library.Track{
				ID:        t.ID,
				URI:       t.URI,
				Name:      t.Name,
				ArtistIDs: t.ArtistIDs,
			})
		}
		out = append(out, playlist)
	}
	return out, nil
}

// liveContents adapts the Web API client to the track-URI reads used by
// both the flow service and the plan applier.
type liveContents struct {
	client *spotify.Client
}

func (a *liveContents) PlaylistTrackURIs(ctx context.Context, playlistID string) ([]string, error) {
	tracks, err := a.client.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	uris := make([]string, 0, len(tracks))
	for _, t := range tracks {
		uris = append(uris, t.URI)
	}
	return uris, nil
}

// sorterSnapshot adapts the Web API client to the sorter snapshot source.
type sorterSnapshot struct {
	client *spotify.Client
}

func (a *sorterSnapshot) AuthoredPlaylists(ctx context.Context) ([]sorter.PlaylistInfo, error) {
	userID, err := a.client.CurrentUserID(ctx)
	if err != nil {
		return nil, err
	}
	playlists, err := a.client.AuthoredPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]sorter.PlaylistInfo, 0, len(playlists))
	for _, p := range playlists {
		if p.OwnerID != userID {
			continue
		}
		out = append(out, sorter.PlaylistInfo{ID: p.ID, Name: p.Name})
	}
	return out, nil
}

func (a *sorterSnapshot) CreatePlaylist(ctx context.Context, name, description string) (sorter.PlaylistInfo, error) {
	p, err := a.client.CreatePlaylist(ctx, name, description)
	if err != nil {
		return sorter.PlaylistInfo{}, err
	}
	return sorter.PlaylistInfo{ID: p.ID, Name: p.Name}, nil
}

// sorterCandidates adapts the Web API client to the staging candidate
// source.
type sorterCandidates struct {
	client *spotify.Client
}

func (a *sorterCandidates) CandidateTracks(ctx context.Context, playlistID string) ([]sorter.Track, error) {
	tracks, err := a.client.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	out := make([]sorter.Track, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, sorter.Track{URI: t.URI, ArtistIDs: t.ArtistIDs})
	}
	return out, nil
}

// cacheFolderData adapts the DAO to the cached folder-playlist reads of
// the sorter.
type cacheFolderData struct {
	dao *cache.DAO
}

func (a *cacheFolderData) PlaylistTracks(playlistID string) ([]sorter.Track, bool) {
	if !a.dao.HasPlaylistTracks(playlistID) {
		return nil, false
	}
	cached, err := a.dao.PlaylistTracks(playlistID)
	if err != nil {
		return nil, false
	}
	out := make([]sorter.Track, 0, len(cached))
	for _, t := range cached {
		out = append(out, sorter.Track{URI: t.URI, ArtistIDs: t.ArtistIDs})
	}
	return out, true
}
