// Package classify predicts destination folders for tracks using
// artist-uniqueness heuristics and audio-feature scoring.
//
// Each approach is an independent strategy value behind one interface,
// selected by configuration. All lookup state lives in an explicitly
// constructed ArtistIndex scoped to one run.
package classify

import (
	"fmt"
	"sort"
)

// AudioFeatures holds the analysis attributes used by feature-based
// strategies. Tempo is in BPM, loudness in dB, everything else 0..1.
type AudioFeatures struct {
	Energy       float64
	Danceability float64
	Valence      float64
	Tempo        float64
	Loudness     float64
	Acousticness float64
}

// Input is one track to classify.
type Input struct {
	TrackID   string
	ArtistIDs []string
	Features  *AudioFeatures // nil when no analysis is available
}

// Result is the outcome of one classification attempt. An empty Folders
// slice means no prediction.
type Result struct {
	Folders    []string
	Confidence map[string]float64
	Method     string
}

// ArtistIndex is the lookup state shared by the strategies, built from
// the cached library for one run.
type ArtistIndex struct {
	// SingleFolder maps artists whose tracks appear in exactly one
	// folder to that folder.
	SingleFolder map[string]string

	// MultiFolder maps artists appearing in several folders to all of
	// them.
	MultiFolder map[string][]string

	// ElectronicFolders marks the folders treated as electronic by the
	// specialist strategy.
	ElectronicFolders map[string]struct{}
}

// DefaultElectronicFolders are the folders the specialist strategy treats
// as electronic when no explicit set is configured.
var DefaultElectronicFolders = []string{"Electronic", "Rave", "House", "Base", "Alive", "Vibes"}

// NewArtistIndex derives the lookup maps from a folder -> artist-ID
// assignment. Artists appearing under exactly one folder go into
// SingleFolder, the rest into MultiFolder.
func NewArtistIndex(folderArtists map[string][]string, electronicFolders []string) ArtistIndex {
	foldersByArtist := make(map[string]map[string]struct{})
	for folder, artists := range folderArtists {
		for _, artist := range artists {
			if artist == "" {
				continue
			}
			if foldersByArtist[artist] == nil {
				foldersByArtist[artist] = make(map[string]struct{})
			}
			foldersByArtist[artist][folder] = struct{}{}
		}
	}

	index := ArtistIndex{
		SingleFolder:      make(map[string]string),
		MultiFolder:       make(map[string][]string),
		ElectronicFolders: make(map[string]struct{}, len(electronicFolders)),
	}
	for artist, folders := range foldersByArtist {
		if len(folders) == 1 {
			for folder := range folders {
				index.SingleFolder[artist] = folder
			}
			continue
		}
		list := make([]string, 0, len(folders))
		for folder := range folders {
			list = append(list, folder)
		}
		sort.Strings(list)
		index.MultiFolder[artist] = list
	}
	for _, folder := range electronicFolders {
		index.ElectronicFolders[folder] = struct{}{}
	}
	return index
}

// Strategy classifies one track.
type Strategy interface {
	Name() string
	Classify(in Input) Result
}

// Strategy names accepted by New.
const (
	StrategyArtistFirst          = "artist-first"
	StrategyConfidenceWeighted   = "confidence-weighted"
	StrategyElectronicSpecialist = "electronic-specialist"
	StrategyEnsemble             = "ensemble"
)

// New returns the strategy selected by name.
func New(name string, index ArtistIndex) (Strategy, error) {
	switch name {
	case StrategyArtistFirst:
		return &ArtistFirst{Index: index}, nil
	case StrategyConfidenceWeighted:
		return &ConfidenceWeighted{Index: index}, nil
	case StrategyElectronicSpecialist:
		return &ElectronicSpecialist{Index: index}, nil
	case StrategyEnsemble:
		return &Ensemble{Strategies: []Strategy{
			&ArtistFirst{Index: index},
			&ConfidenceWeighted{Index: index},
			&ElectronicSpecialist{Index: index},
		}}, nil
	default:
		return nil, fmt.Errorf("unknown classification strategy %q", name)
	}
}

// sortedByScore returns folders ordered by descending score, keeping
// only those above the threshold. Ties break on folder name so results
// are reproducible.
func sortedByScore(scores map[string]float64, threshold float64) ([]string, map[string]float64) {
	var folders []string
	kept := make(map[string]float64)
	for folder, score := range scores {
		if score > threshold {
			folders = append(folders, folder)
			kept[folder] = score
		}
	}
	sort.Slice(folders, func(i, j int) bool {
		if kept[folders[i]] != kept[folders[j]] {
			return kept[folders[i]] > kept[folders[j]]
		}
		return folders[i] < folders[j]
	})
	if len(folders) == 0 {
		return nil, nil
	}
	return folders, kept
}
