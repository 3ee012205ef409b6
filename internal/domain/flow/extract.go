package flow

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// testNamePrefixes are stripped before extraction so fixtures created by the
// integration harness never participate in flow relationships.
var testNamePrefixes = []string{"🧪TEST_"}

// commonPunctuation is ordinary keyboard punctuation, which never carries
// flow semantics. Everything else that is neither alphanumeric nor
// whitespace (emoji, alchemical symbols, dingbats) is a marker candidate.
const commonPunctuation = "!@#$%^&*()_+-=[]{}|;':\",./<>?`~"

// Annotation is the flow annotation derived from one playlist name.
//
// ParentMarkers are the special clusters strictly before the first letter,
// ChildMarkers those strictly after the last letter, both in left-to-right
// order. Both are empty when the name contains no letters, or when a marker
// appears on both sides (a playlist cannot flow into itself).
type Annotation struct {
	ParentMarkers []string
	ChildMarkers  []string
}

// IsParent reports whether the playlist receives flowed tracks.
func (a Annotation) IsParent() bool { return len(a.ParentMarkers) > 0 }

// IsChild reports whether the playlist donates its tracks.
func (a Annotation) IsChild() bool { return len(a.ChildMarkers) > 0 }

// InFlow reports whether the playlist participates in flow at all.
func (a Annotation) InFlow() bool { return a.IsParent() || a.IsChild() }

// Extract parses a playlist display name into its flow annotation.
//
// The name is normalized (NFC, zero-width stripped) and segmented into
// grapheme clusters so multi-codepoint emoji, flag sequences, ZWJ sequences
// and skin-tone variants each count as a single marker. Markers are only
// taken from the runs before the first letter and after the last letter;
// special characters between letters are never markers.
func Extract(name string) Annotation {
	clean := Normalize(name)
	for _, prefix := range testNamePrefixes {
		if strings.HasPrefix(clean, prefix) {
			clean = strings.TrimPrefix(clean, prefix)
			break
		}
	}
	if strings.TrimSpace(clean) == "" {
		return Annotation{}
	}

	clusters := graphemeClusters(clean)

	firstLetter := -1
	lastLetter := -1
	for i, cluster := range clusters {
		if isLetterCluster(cluster) {
			if firstLetter < 0 {
				firstLetter = i
			}
			lastLetter = i
		}
	}
	if firstLetter < 0 {
		// No letters at all: the name cannot be a flow playlist.
		return Annotation{}
	}

	var parents, children []string
	for _, cluster := range clusters[:firstLetter] {
		if isSpecialCluster(cluster) {
			parents = append(parents, cluster)
		}
	}
	for _, cluster := range clusters[lastLetter+1:] {
		if isSpecialCluster(cluster) {
			children = append(children, cluster)
		}
	}

	// Self-reference rule: a marker on both sides would make the playlist
	// flow into itself, so the whole name drops out of flow.
	for _, p := range parents {
		for _, c := range children {
			if p == c {
				return Annotation{}
			}
		}
	}

	return Annotation{ParentMarkers: parents, ChildMarkers: children}
}

// graphemeClusters splits a string into user-perceived characters.
func graphemeClusters(s string) []string {
	var clusters []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	return clusters
}

// isLetterCluster reports whether any codepoint in the cluster is a letter.
func isLetterCluster(cluster string) bool {
	for _, r := range cluster {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

// isSpecialCluster reports whether the cluster is a marker candidate: not
// alphanumeric, not whitespace and not common keyboard punctuation.
func isSpecialCluster(cluster string) bool {
	if cluster == "" || isAlnumCluster(cluster) || isSpaceCluster(cluster) {
		return false
	}
	if r, size := utf8.DecodeRuneInString(cluster); size == len(cluster) &&
		strings.ContainsRune(commonPunctuation, r) {
		return false
	}
	return true
}

// isAlnumCluster reports whether every codepoint is a letter or a number.
func isAlnumCluster(cluster string) bool {
	for _, r := range cluster {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsNumber(r) {
			return false
		}
	}
	return true
}

// isSpaceCluster reports whether every codepoint is whitespace.
func isSpaceCluster(cluster string) bool {
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
