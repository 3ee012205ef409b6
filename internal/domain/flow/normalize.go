// Package flow infers directed "flow" relationships between playlists from
// the special characters in their display names. Special characters at the
// start of a name mark the playlist as a parent (a receiver of flowed
// tracks); special characters at the end mark it as a child (a donor).
package flow

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// zeroWidthReplacer strips zero-width codepoints that break name parsing.
var zeroWidthReplacer = strings.NewReplacer(
	"\u200B", "", // zero width space
	"\u200C", "", // zero width non-joiner
	"\u2060", "", // word joiner
	"\uFEFF", "", // zero width no-break space
)

// Normalize applies Unicode NFC normalization and removes zero-width
// characters from a display name.
func Normalize(name string) string {
	return zeroWidthReplacer.Replace(norm.NFC.String(name))
}

// NameKey reduces a display name to a stable lowercase key for
// case-insensitive matching between configuration and live snapshots.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(Normalize(name)))
}
