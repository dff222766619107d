package session

import (
	remotev1 "github.com/osa030/albumbox/internal/api/remotev1"
	"github.com/osa030/albumbox/internal/app/playback"
	"github.com/osa030/albumbox/internal/domain/album"
	"github.com/osa030/albumbox/internal/domain/track"
)

// BuildAlbumInfo converts an album for the remote API.
func BuildAlbumInfo(a album.Album, withTracks bool) *remotev1.AlbumInfo {
	info := &remotev1.AlbumInfo{
		Slug:          a.Slug,
		Title:         a.Title,
		Artist:        a.Artist,
		ReleaseInfo:   a.ReleaseInfo,
		CoverArtUrl:   a.CoverArtURL,
		TrackCount:    int32(len(a.Tracks)),
		TotalDuration: a.TotalDuration(),
	}
	if withTracks {
		info.Tracks = make([]*remotev1.TrackInfo, len(a.Tracks))
		for i, t := range a.Tracks {
			info.Tracks[i] = buildTrackInfo(i, t)
		}
	}
	return info
}

func buildTrackInfo(i int, t track.Track) *remotev1.TrackInfo {
	return &remotev1.TrackInfo{
		Index:        int32(i),
		Position:     int32(t.Position),
		Title:        t.Title,
		Duration:     t.Duration,
		DurationText: t.FormattedDuration(),
	}
}

// BuildPlayerState converts a playback snapshot for the remote API.
func BuildPlayerState(s playback.Snapshot) *remotev1.PlayerState {
	state := &remotev1.PlayerState{
		SessionId:       s.SessionID,
		Album:           BuildAlbumInfo(s.Album, true),
		State:           s.State.String(),
		IsPlaying:       s.IsPlaying,
		CurrentIndex:    int32(s.CurrentIndex),
		LoadedIndex:     int32(s.LoadedIndex),
		CurrentTime:     s.CurrentTime,
		Duration:        s.Duration,
		CurrentVolume:   s.Volume,
		HoveredIndex:    int32(s.HoveredIndex),
		CurrentTimeText: track.FormatTime(s.CurrentTime),
		DurationText:    track.FormatTime(s.Duration),
	}
	if s.CurrentTrack != nil {
		state.CurrentTrack = buildTrackInfo(s.CurrentIndex, *s.CurrentTrack)
	}
	return state
}
