// Package track provides the Track domain entity.
package track

import (
	"fmt"
	"math"
)

// Track represents a single playable item within an album.
type Track struct {
	Title    string  // Track title
	Duration float64 // Catalog-declared length in seconds (informational)
	Source   string  // Audio source locator (URL or path)
	Position int     // 1-based position within the album
}

// FormattedDuration returns the catalog-declared duration as m:ss.
func (t Track) FormattedDuration() string {
	return FormatTime(t.Duration)
}

// HasSource reports whether the track carries an audio source locator.
func (t Track) HasSource() bool {
	return t.Source != ""
}

// maxFormattedSeconds bounds the values FormatTime renders. Anything larger
// is not a real track length.
const maxFormattedSeconds = math.MaxInt32

// FormatTime renders seconds as minutes:seconds with the seconds zero-padded
// to two digits (65 -> "1:05"). Negative, NaN, infinite and absurdly large
// values render as "0:00".
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) || seconds > maxFormattedSeconds {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
