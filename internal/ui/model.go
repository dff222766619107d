// Package ui provides the terminal player view.
package ui

import (
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/albumbox/internal/app/playback"
)

const (
	scrubStep  = 0.05
	volumeStep = 0.05

	// Rows above the first track row.
	headerHeight = 3
)

// Player is the controller surface the view drives.
type Player interface {
	Events() <-chan playback.Event
	Snapshot() playback.Snapshot
	SelectTrack(i int) error
	Toggle() error
	Previous() error
	Next() error
	Scrub(f float64) error
	SetVolume(v float64) error
	Hover(i int)
	Unhover()
}

// eventMsg carries one controller event into the update loop
type eventMsg playback.Event

// eventsClosedMsg is sent when the controller is closed
type eventsClosedMsg struct{}

// Model is the Bubble Tea model for the player.
type Model struct {
	player   Player
	events   <-chan playback.Event
	snap     playback.Snapshot
	progress progress.Model

	width     int
	height    int
	lastError error
}

// New creates a model bound to the given player.
func New(player Player) Model {
	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 40

	return Model{
		player:   player,
		events:   player.Events(),
		snap:     player.Snapshot(),
		progress: prog,
	}
}

// Snapshot returns the state the model last rendered.
func (m Model) Snapshot() playback.Snapshot {
	return m.snap
}

// Wait for the next controller event
func waitForEvent(events <-chan playback.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg), nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 40
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		if m.progress.Width < 10 {
			m.progress.Width = 10
		}

	case eventMsg:
		m.snap = msg.Snapshot
		return m, waitForEvent(m.events)

	case eventsClosedMsg:
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		m.player.Hover(m.moveHover(-1))
	case "down", "j":
		m.player.Hover(m.moveHover(1))
	case "enter":
		if i := m.snap.HoveredIndex; i >= 0 {
			m.apply(m.player.SelectTrack(i))
		}
	case " ":
		m.apply(m.player.Toggle())
	case "p":
		m.apply(m.player.Previous())
	case "n":
		m.apply(m.player.Next())
	case "left":
		m.apply(m.player.Scrub(m.snap.Progress() - scrubStep))
	case "right":
		m.apply(m.player.Scrub(m.snap.Progress() + scrubStep))
	case "-":
		m.apply(m.player.SetVolume(m.snap.Volume - volumeStep))
	case "+", "=":
		m.apply(m.player.SetVolume(m.snap.Volume + volumeStep))
	default:
		return m, nil
	}
	m.snap = m.player.Snapshot()
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	row := msg.Y - headerHeight
	inList := row >= 0 && row < len(m.snap.Album.Tracks)

	switch msg.Action {
	case tea.MouseActionMotion:
		if inList {
			if row != m.snap.HoveredIndex {
				m.player.Hover(row)
			}
		} else if m.snap.HoveredIndex >= 0 {
			m.player.Unhover()
		}
	case tea.MouseActionPress:
		if !inList || msg.Button != tea.MouseButtonLeft {
			return m
		}
		m.apply(m.player.SelectTrack(row))
	default:
		return m
	}
	m.snap = m.player.Snapshot()
	return m
}

// moveHover returns the row the hover moves to. With nothing hovered it
// starts from the current track.
func (m Model) moveHover(delta int) int {
	n := len(m.snap.Album.Tracks)
	from := m.snap.HoveredIndex
	if from < 0 {
		from = m.snap.CurrentIndex
	}
	if from < 0 {
		if delta > 0 {
			return 0
		}
		return n - 1
	}
	to := from + delta
	if to < 0 {
		to = 0
	}
	if to >= n {
		to = n - 1
	}
	return to
}

// apply records the outcome of a controller call.
func (m *Model) apply(err error) {
	if err == nil || errors.Is(err, playback.ErrNoTrack) {
		m.lastError = nil
		return
	}
	zlog.Warn().Msgf("player action failed: error=%v", err)
	m.lastError = err
}
