package playback

import (
	"github.com/osa030/albumbox/internal/domain/album"
	"github.com/osa030/albumbox/internal/domain/track"
)

// EventType represents a playback event type.
type EventType int

const (
	EventTrackChanged    EventType = iota // Current track changed (selected, cleared, navigated)
	EventStateChanged                     // Play/pause changed on the same track
	EventPositionChanged                  // Current time changed
	EventDurationChanged                  // Duration changed
	EventVolumeChanged                    // Volume changed
	EventHoverChanged                     // Hovered row changed
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackChanged:
		return "track_changed"
	case EventStateChanged:
		return "state_changed"
	case EventPositionChanged:
		return "position_changed"
	case EventDurationChanged:
		return "duration_changed"
	case EventVolumeChanged:
		return "volume_changed"
	case EventHoverChanged:
		return "hover_changed"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type     EventType
	Snapshot Snapshot // State after the change
}

// Snapshot is an immutable copy of the playback session state.
type Snapshot struct {
	SessionID    string
	Album        album.Album
	State        State
	IsPlaying    bool
	CurrentIndex int          // -1 when no track is selected
	CurrentTrack *track.Track // nil when no track is selected
	LoadedIndex  int          // Track whose source the output holds
	CurrentTime  float64
	Duration     float64
	Volume       float64
	HoveredIndex int // -1 when nothing is hovered
}

// Progress returns the played fraction of the loaded track in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.Duration <= 0 {
		return 0
	}
	p := s.CurrentTime / s.Duration
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// IsCurrent reports whether row i is the selected track.
func (s Snapshot) IsCurrent(i int) bool {
	return s.CurrentIndex >= 0 && s.CurrentIndex == i
}
