// Package remotev1 defines the messages of the albumbox.v1 remote control API.
package remotev1

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationTypeInitialState NotificationType = "initial_state"
	NotificationTypeStateChanged NotificationType = "state_changed"
	NotificationTypeAlbumOpened  NotificationType = "album_opened"
	NotificationTypeAlbumClosed  NotificationType = "album_closed"
)

// TrackInfo describes one track of an album.
type TrackInfo struct {
	Index        int32   `json:"index"`
	Position     int32   `json:"position"`
	Title        string  `json:"title"`
	Duration     float64 `json:"duration"`
	DurationText string  `json:"duration_text"`
}

// AlbumInfo describes a catalog album.
type AlbumInfo struct {
	Slug          string       `json:"slug"`
	Title         string       `json:"title"`
	Artist        string       `json:"artist"`
	ReleaseInfo   string       `json:"release_info,omitempty"`
	CoverArtUrl   string       `json:"cover_art_url,omitempty"`
	TrackCount    int32        `json:"track_count"`
	TotalDuration float64      `json:"total_duration"`
	Tracks        []*TrackInfo `json:"tracks,omitempty"`
}

// PlayerState is the state of the playback session.
type PlayerState struct {
	SessionId       string     `json:"session_id"`
	Album           *AlbumInfo `json:"album,omitempty"`
	State           string     `json:"state"`
	IsPlaying       bool       `json:"is_playing"`
	CurrentIndex    int32      `json:"current_index"`
	CurrentTrack    *TrackInfo `json:"current_track,omitempty"`
	LoadedIndex     int32      `json:"loaded_index"`
	CurrentTime     float64    `json:"current_time"`
	Duration        float64    `json:"duration"`
	CurrentVolume   float64    `json:"current_volume"`
	HoveredIndex    int32      `json:"hovered_index"`
	CurrentTimeText string     `json:"current_time_text"`
	DurationText    string     `json:"duration_text"`
}

// Notification is pushed to subscribers.
type Notification struct {
	Type       NotificationType `json:"type"`
	SequenceNo uint64           `json:"sequence_no"`
	Event      string           `json:"event,omitempty"`
	State      *PlayerState     `json:"state,omitempty"`
}

type ListAlbumsRequest struct{}

type ListAlbumsResponse struct {
	Albums []*AlbumInfo `json:"albums"`
}

type OpenAlbumRequest struct {
	Slug string `json:"slug"`
}

type GetStateRequest struct{}

type SelectTrackRequest struct {
	Index int32 `json:"index"`
}

type ToggleRequest struct{}

type PreviousRequest struct{}

type NextRequest struct{}

type ScrubRequest struct {
	Fraction float64 `json:"fraction"`
}

type SetVolumeRequest struct {
	Volume float64 `json:"volume"`
}

// HoverRequest sets the hovered row. A negative index clears it.
type HoverRequest struct {
	Index int32 `json:"index"`
}

type SubscribeRequest struct{}
