package sorter

import "sort"

// PlanAdditions computes, for every candidate track, the folders whose
// artist set intersects the track's artists, and records the track under
// every matching folder's destination. All matches are kept: a track that
// fits two folders lands in both aggregators, unlike a single-best-match
// classifier. Folders with empty artist sets never match, which guards
// against accidental wildcard routing. Unmatched tracks simply stay where
// they are.
func PlanAdditions(tracks []Track, index FolderArtistIndex, folderDestination map[string]string) (AdditionPlan, ProvenanceMap) {
	plan := make(AdditionPlan)
	provenance := make(ProvenanceMap)

	// The result is set-based; folder order only affects diagnostics, so
	// keep it stable.
	folders := make([]string, 0, len(index))
	for folder := range index {
		folders = append(folders, folder)
	}
	sort.Strings(folders)

	planned := make(map[string]map[string]bool) // destination -> uri
	matched := make(map[string]map[string]bool) // uri -> folder

	for _, track := range tracks {
		for _, folder := range folders {
			artists := index[folder]
			if len(artists) == 0 {
				continue
			}
			if !anyArtistIn(track.ArtistIDs, artists) {
				continue
			}
			destination, ok := folderDestination[folder]
			if !ok {
				continue
			}

			if planned[destination] == nil {
				planned[destination] = make(map[string]bool)
			}
			if !planned[destination][track.URI] {
				planned[destination][track.URI] = true
				plan[destination] = append(plan[destination], track.URI)
			}

			if matched[track.URI] == nil {
				matched[track.URI] = make(map[string]bool)
			}
			if !matched[track.URI][folder] {
				matched[track.URI][folder] = true
				provenance[track.URI] = append(provenance[track.URI], folder)
			}
		}
	}
	return plan, provenance
}

func anyArtistIn(artistIDs []string, set ArtistSet) bool {
	for _, id := range artistIDs {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
