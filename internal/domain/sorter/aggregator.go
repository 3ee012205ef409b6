package sorter

import "github.com/edumarques81/meridian-playlist-curator/internal/domain/flow"

// Aggregator playlist names use CJK corner brackets so they sort together
// and never collide with the flow marker alphabet.
const (
	leftBracket  = "「"
	rightBracket = "」"
)

// AggregatorName derives the aggregator playlist display name for a folder.
func AggregatorName(folder string) string {
	return leftBracket + folder + rightBracket
}

// IsAggregatorFor reports whether a playlist display name is the standard
// bracket aggregator for the given folder, using normalized name keys.
func IsAggregatorFor(playlistName, folder string) bool {
	if folder == "" {
		return false
	}
	return flow.NameKey(playlistName) == flow.NameKey(AggregatorName(folder))
}
