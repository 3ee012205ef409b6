package classify

// ArtistFirst predicts from folder-exclusive artists, falling back to
// audio features for electronic music when no artist matches.
type ArtistFirst struct {
	Index ArtistIndex
}

// Name implements Strategy.
func (s *ArtistFirst) Name() string { return StrategyArtistFirst }

// Classify implements Strategy.
func (s *ArtistFirst) Classify(in Input) Result {
	scores := make(map[string]float64)
	for _, artist := range in.ArtistIDs {
		if folder, ok := s.Index.SingleFolder[artist]; ok {
			scores[folder] = 0.95
		}
	}
	if len(scores) > 0 {
		folders, kept := sortedByScore(scores, 0)
		return Result{Folders: folders, Confidence: kept, Method: "single_folder_artist"}
	}

	if in.Features != nil {
		if folders, kept := sortedByScore(audioScores(*in.Features), 0); folders != nil {
			return Result{Folders: folders, Confidence: kept, Method: "audio_features"}
		}
	}

	return Result{Method: "no_prediction"}
}

// ConfidenceWeighted accumulates weighted scores from every available
// signal and keeps folders above a confidence floor.
type ConfidenceWeighted struct {
	Index ArtistIndex
}

// Name implements Strategy.
func (s *ConfidenceWeighted) Name() string { return StrategyConfidenceWeighted }

// Classify implements Strategy.
func (s *ConfidenceWeighted) Classify(in Input) Result {
	scores := make(map[string]float64)

	for _, artist := range in.ArtistIDs {
		if folder, ok := s.Index.SingleFolder[artist]; ok {
			scores[folder] += 0.9
			continue
		}
		if folders, ok := s.Index.MultiFolder[artist]; ok && len(folders) > 0 {
			// Spread a lower weight across every folder the artist
			// appears in.
			weight := 0.3 / float64(len(folders))
			for _, folder := range folders {
				scores[folder] += weight
			}
		}
	}

	if in.Features != nil {
		for folder, score := range audioScores(*in.Features) {
			scores[folder] += score * 0.4
		}
	}

	folders, kept := sortedByScore(scores, 0.2)
	if folders == nil {
		return Result{Method: "no_prediction"}
	}
	return Result{Folders: folders, Confidence: kept, Method: "confidence_weighted"}
}

// ElectronicSpecialist biases toward electronic sub-folders, trusting
// exclusive artists inside the electronic set slightly less than
// exclusive artists outside it, and applying tighter audio rules when
// no artist signal exists.
type ElectronicSpecialist struct {
	Index ArtistIndex
}

// Name implements Strategy.
func (s *ElectronicSpecialist) Name() string { return StrategyElectronicSpecialist }

// Classify implements Strategy.
func (s *ElectronicSpecialist) Classify(in Input) Result {
	scores := make(map[string]float64)

	for _, artist := range in.ArtistIDs {
		folder, ok := s.Index.SingleFolder[artist]
		if !ok {
			continue
		}
		if _, electronic := s.Index.ElectronicFolders[folder]; electronic {
			scores[folder] += 0.8
		} else {
			scores[folder] += 0.9
		}
	}

	if len(scores) == 0 && in.Features != nil {
		for folder, score := range electronicAudioScores(*in.Features) {
			scores[folder] += score
		}
	}

	folders, kept := sortedByScore(scores, 0.3)
	if folders == nil {
		return Result{Method: "no_prediction"}
	}
	return Result{Folders: folders, Confidence: kept, Method: "electronic_specialist"}
}

// Ensemble combines the predictions of several strategies by averaging
// each folder's confidence and weighting it by the fraction of
// strategies that voted for it.
type Ensemble struct {
	Strategies []Strategy
}

// Name implements Strategy.
func (s *Ensemble) Name() string { return StrategyEnsemble }

// Classify implements Strategy.
func (s *Ensemble) Classify(in Input) Result {
	votes := make(map[string][]float64)
	for _, strategy := range s.Strategies {
		result := strategy.Classify(in)
		for _, folder := range result.Folders {
			confidence, ok := result.Confidence[folder]
			if !ok {
				confidence = 0.5
			}
			votes[folder] = append(votes[folder], confidence)
		}
	}

	scores := make(map[string]float64)
	for folder, confidences := range votes {
		var sum float64
		for _, c := range confidences {
			sum += c
		}
		avg := sum / float64(len(confidences))
		strength := float64(len(confidences)) / float64(len(s.Strategies))
		scores[folder] = avg * strength
	}

	folders, kept := sortedByScore(scores, 0.3)
	if folders == nil {
		return Result{Method: "no_prediction"}
	}
	return Result{Folders: folders, Confidence: kept, Method: "ensemble"}
}

// audioScores maps audio features to folder scores for the general
// strategies.
func audioScores(f AudioFeatures) map[string]float64 {
	scores := make(map[string]float64)

	if f.Danceability > 0.6 && f.Energy > 0.6 {
		switch {
		case f.Tempo > 130:
			scores["Rave"] = clamp((f.Danceability+f.Energy)/2, 0.8)
		case f.Tempo > 120:
			scores["House"] = clamp(f.Danceability*0.8, 0.7)
		default:
			scores["Electronic"] = clamp((f.Danceability+f.Energy)/2.5, 0.6)
		}
	}
	if f.Energy > 0.7 && f.Valence < 0.5 {
		scores["Base"] = clamp(f.Energy*(1-f.Valence), 0.7)
	}
	if f.Acousticness > 0.5 && f.Energy < 0.5 {
		if f.Valence > 0.6 {
			scores["Vibes"] = clamp(f.Acousticness*f.Valence, 0.6)
		} else {
			scores["Chill"] = clamp(f.Acousticness, 0.5)
		}
	}
	if f.Energy > 0.6 && f.Acousticness < 0.3 && f.Danceability < 0.6 {
		scores["Rock"] = clamp(f.Energy*(1-f.Acousticness), 0.6)
	}

	return scores
}

// electronicAudioScores applies the tighter electronic sub-genre rules.
func electronicAudioScores(f AudioFeatures) map[string]float64 {
	scores := make(map[string]float64)

	if f.Energy > 0.75 && f.Valence < 0.4 && f.Loudness > -8 {
		scores["Base"] = 0.8
	}
	if f.Energy > 0.7 && f.Danceability > 0.6 && f.Tempo > 128 {
		scores["Rave"] = 0.75
	}
	if f.Danceability > 0.7 && f.Tempo >= 120 && f.Tempo <= 130 && f.Energy > 0.5 {
		scores["House"] = 0.7
	}
	if f.Valence > 0.5 && f.Energy > 0.4 && f.Danceability > 0.4 {
		scores["Alive"] = 0.6
	}
	if f.Danceability > 0.5 && f.Energy > 0.4 {
		scores["Electronic"] = 0.5
	}

	return scores
}

func clamp(v, max float64) float64 {
	if v > max {
		return max
	}
	return v
}
