// Package playback provides the playback controller for a single album.
package playback

// State represents the playback state.
type State int

const (
	StateIdle    State = iota // No track selected (the output may hold a pre-loaded one)
	StatePlaying              // Track is playing
	StatePaused               // Track is selected but paused
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}
