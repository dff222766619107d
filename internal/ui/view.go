package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/osa030/albumbox/internal/app/playback"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F8B500"))

	artistStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	currentStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1A3"))

	hoverStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	glyphStyle = lipgloss.NewStyle().
			Width(3).
			Align(lipgloss.Right)

	transportStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(0, 1)
)

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString(m.trackListView())
	b.WriteString("\n")
	b.WriteString(m.transportView())
	b.WriteString("\n")

	if m.lastError != nil {
		b.WriteString(errorStyle.Render("Error: "+m.lastError.Error()) + "\n")
	}
	b.WriteString(dimStyle.Render("↑/↓ hover  enter play  space play/pause  p/n prev/next  ←/→ seek  -/+ volume  q quit"))

	return b.String()
}

// headerView renders exactly headerHeight lines.
func (m Model) headerView() string {
	a := m.snap.Album

	byline := a.Artist
	if a.ReleaseInfo != "" {
		byline += " · " + a.ReleaseInfo
	}

	return titleStyle.Render(a.Title) + "\n" +
		artistStyle.Render(byline) + "\n" +
		"\n"
}

func (m Model) trackListView() string {
	tracks := m.snap.Album.Tracks

	titleWidth := 0
	for _, t := range tracks {
		if w := lipgloss.Width(t.Title); w > titleWidth {
			titleWidth = w
		}
	}

	var b strings.Builder
	for i, t := range tracks {
		row := fmt.Sprintf("%s  %s  %s",
			glyphStyle.Render(playback.RowGlyph(m.snap, i)),
			t.Title+strings.Repeat(" ", titleWidth-lipgloss.Width(t.Title)),
			dimStyle.Render(t.FormattedDuration()),
		)
		if m.snap.IsCurrent(i) {
			row = currentStyle.Render(row)
		}
		if i == m.snap.HoveredIndex {
			row = hoverStyle.Render(row)
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (m Model) transportView() string {
	s := m.snap

	button := playback.GlyphPlay
	if s.IsPlaying {
		button = playback.GlyphPause
	}

	title := ""
	if s.CurrentTrack != nil {
		title = s.CurrentTrack.Title
	} else if t, ok := s.Album.TrackAt(s.LoadedIndex); ok {
		title = dimStyle.Render(t.Title)
	}

	timing := fmt.Sprintf("%s / %s", playback.FormatTime(s.CurrentTime), playback.FormatTime(s.Duration))
	volume := fmt.Sprintf("vol %3.0f%%", s.Volume*100)

	bar := lipgloss.JoinHorizontal(lipgloss.Center,
		button, "  ",
		m.progress.ViewAs(s.Progress()), "  ",
		timing, "  ",
		volume,
	)
	return transportStyle.Render(title + "\n" + bar)
}
