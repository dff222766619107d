package playback

import "strconv"

// Row glyphs shown in place of the track number on a hovered row.
const (
	GlyphPlay  = "▶"
	GlyphPause = "⏸"
)

// RowGlyph returns what the track list shows in the number column of row i:
// the 1-based track number, or a play/pause glyph when the row is hovered.
// The pause glyph marks the hovered row that is the current track.
func RowGlyph(s Snapshot, i int) string {
	if i < 0 || i >= len(s.Album.Tracks) {
		return ""
	}
	if i != s.HoveredIndex {
		pos := s.Album.Tracks[i].Position
		if pos == 0 {
			pos = i + 1
		}
		return strconv.Itoa(pos)
	}
	if s.IsCurrent(i) {
		return GlyphPause
	}
	return GlyphPlay
}
