// Package main is the entry point for the Meridian playlist curator.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edumarques81/meridian-playlist-curator/internal/config"
	"github.com/edumarques81/meridian-playlist-curator/internal/domain/classify"
	"github.com/edumarques81/meridian-playlist-curator/internal/domain/flow"
	"github.com/edumarques81/meridian-playlist-curator/internal/domain/library"
	"github.com/edumarques81/meridian-playlist-curator/internal/domain/sorter"
	"github.com/edumarques81/meridian-playlist-curator/internal/infra/cache"
	"github.com/edumarques81/meridian-playlist-curator/internal/infra/notify"
	"github.com/edumarques81/meridian-playlist-curator/internal/infra/spotify"
	"github.com/edumarques81/meridian-playlist-curator/internal/version"
)

const usage = `Usage: meridian [flags] <command>

Commands:
  sync      Refresh the local library cache from the streaming account
  flow      Propagate tracks from child playlists into their parents
  sort      Route staging-inbox tracks into folder aggregator playlists
  classify  Predict destination folders for staging tracks without mutating
  stats     Print library cache statistics

Flags:
`

func main() {
	foldersPath := flag.String("folders", "folders.json", "Folder configuration file (folder -> playlist names)")
	dbPath := flag.String("db", "", "Cache database path (overrides CACHE_DB_PATH)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	command := flag.Arg(0)
	if command == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	// Print startup banner
	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Playlist Curation Backend")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Str("command", command).
		Str("db", cfg.DBPath).
		Str("staging", cfg.StagingName).
		Bool("telegram", cfg.TelegramEnabled()).
		Msg("Configuration")

	db := cache.NewDB(cfg.DBPath)
	if err := db.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer db.Close()
	dao := cache.NewDAO(db)

	client := spotify.NewClient(spotify.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
	})

	// Cancel the run on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		cancel()
	}()

	switch command {
	case "sync":
		err = runSync(ctx, client, dao)
	case "flow":
		err = runFlow(ctx, cfg, client, dao)
	case "sort":
		err = runSort(ctx, cfg, client, dao, *foldersPath)
	case "classify":
		err = runClassify(ctx, cfg, client, dao, *foldersPath)
	case "stats":
		err = runStats(dao)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Run failed")
	}
}

// runSync refreshes the local cache from the remote account.
func runSync(ctx context.Context, client *spotify.Client, dao *cache.DAO) error {
	syncer := library.NewSyncer(&libraryClient{client: client}, &cacheStore{dao: dao})
	stats, err := syncer.Sync(ctx)
	if err != nil {
		return err
	}
	if stats.Failed > 0 {
		log.Warn().Int("failed", stats.Failed).Msg("Some playlists failed to refresh")
	}
	return nil
}

// runFlow propagates child playlist tracks into their parents. Playlist
// names come from the cache, so a sync should run first; contents are
// read live so the dedup set is current.
func runFlow(ctx context.Context, cfg config.Config, client *spotify.Client, dao *cache.DAO) error {
	snapshot, err := library.LoadSnapshot(&cacheStore{dao: dao})
	if err != nil {
		return err
	}

	nodes := make([]flow.Node, 0, len(snapshot.Playlists()))
	for _, p := range snapshot.Playlists() {
		nodes = append(nodes, flow.NewNode(p.ID, p.Name))
	}
	if len(nodes) == 0 {
		return fmt.Errorf("library cache is empty, run sync first")
	}

	service := flow.NewService(&liveContents{client: client}, client, cfg.FlowSkipCycles)
	result, err := service.Run(ctx, nodes)
	if err != nil {
		return err
	}

	for _, cycle := range result.Cycles {
		log.Warn().Strs("playlists", cycle).Msg("Flow cycle detected")
	}
	log.Info().
		Str("run_id", result.RunID).
		Int("added", result.TotalAdded()).
		Int("parents", len(result.AddedByParent)).
		Int("failures", len(result.Failures)).
		Msg("Flow run completed")

	if len(result.Failures) > 0 {
		return fmt.Errorf("%d parent playlists failed", len(result.Failures))
	}
	return nil
}

// runSort routes staging tracks into folder aggregators.
func runSort(ctx context.Context, cfg config.Config, client *spotify.Client, dao *cache.DAO, foldersPath string) error {
	folders, err := loadFolders(foldersPath)
	if err != nil {
		return err
	}

	notifier := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	applier := sorter.NewApplier(&liveContents{client: client}, client)
	service := sorter.NewService(
		&sorterSnapshot{client: client},
		&sorterCandidates{client: client},
		&cacheFolderData{dao: dao},
		applier,
		notifier,
		sorter.Config{StagingName: cfg.StagingName, KeepInStaging: cfg.KeepInStaging},
	)

	summary, err := service.Run(ctx, folders)
	if err != nil {
		return err
	}
	if len(summary.Failures) > 0 {
		return fmt.Errorf("%d mutation batches failed", len(summary.Failures))
	}
	return nil
}

// runClassify predicts destination folders for the staging candidates
// with the configured strategy and logs the predictions. A dry-run
// companion to sort: nothing is mutated.
func runClassify(ctx context.Context, cfg config.Config, client *spotify.Client, dao *cache.DAO, foldersPath string) error {
	folders, err := loadFolders(foldersPath)
	if err != nil {
		return err
	}
	snapshot, err := library.LoadSnapshot(&cacheStore{dao: dao})
	if err != nil {
		return err
	}

	staging, ok := snapshot.PlaylistByName(cfg.StagingName)
	if !ok {
		return fmt.Errorf("staging playlist %q not found in cache, run sync first", cfg.StagingName)
	}

	resolved, missing := sorter.ResolveFolderPlaylists(folders, snapshot.NameIndex())
	if len(missing) > 0 {
		log.Warn().Strs("references", missing).Msg("Unresolved folder references")
	}
	playlistTracks := make(map[string][]sorter.Track)
	folderData := &cacheFolderData{dao: dao}
	for _, playlistIDs := range resolved {
		for _, playlistID := range playlistIDs {
			if _, loaded := playlistTracks[playlistID]; loaded {
				continue
			}
			if tracks, cached := folderData.PlaylistTracks(playlistID); cached {
				playlistTracks[playlistID] = tracks
			}
		}
	}

	folderArtists := make(map[string][]string)
	for folder, artists := range sorter.BuildFolderArtistIndex(resolved, playlistTracks) {
		for artist := range artists {
			folderArtists[folder] = append(folderArtists[folder], artist)
		}
	}
	index := classify.NewArtistIndex(folderArtists, classify.DefaultElectronicFolders)

	strategy, err := classify.New(cfg.ClassifyStrategy, index)
	if err != nil {
		return err
	}

	candidates, err := client.PlaylistTracks(ctx, staging.ID)
	if err != nil {
		return fmt.Errorf("fetch staging tracks: %w", err)
	}

	predicted := 0
	for _, track := range candidates {
		result := strategy.Classify(classify.Input{TrackID: track.ID, ArtistIDs: track.ArtistIDs})
		if len(result.Folders) == 0 {
			log.Debug().Str("track", track.Name).Msg("No prediction")
			continue
		}
		predicted++
		log.Info().
			Str("track", track.Name).
			Strs("folders", result.Folders).
			Str("method", result.Method).
			Msg("Predicted destination")
	}
	log.Info().
		Str("strategy", strategy.Name()).
		Int("candidates", len(candidates)).
		Int("predicted", predicted).
		Msg("Classification completed")
	return nil
}

// runStats prints cache statistics.
func runStats(dao *cache.DAO) error {
	snapshot, err := library.LoadSnapshot(&cacheStore{dao: dao})
	if err != nil {
		return err
	}
	stats := snapshot.Stats()
	log.Info().
		Int("playlists", stats.Playlists).
		Int("tracks", stats.Tracks).
		Int("unique_artists", stats.UniqueArtists).
		Int("single_playlist_artists", len(snapshot.SinglePlaylistArtists())).
		Msg("Library cache statistics")
	return nil
}

// loadFolders reads the folder -> playlist-name assignment from a JSON
// file shaped {"Folder": ["Playlist A", "Playlist B"]}.
func loadFolders(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read folder configuration: %w", err)
	}
	var folders map[string][]string
	if err := json.Unmarshal(data, &folders); err != nil {
		return nil, fmt.Errorf("parse folder configuration: %w", err)
	}
	for folder, names := range folders {
		if strings.TrimSpace(folder) == "" || len(names) == 0 {
			return nil, fmt.Errorf("folder configuration has an empty folder or playlist list")
		}
	}
	return folders, nil
}
