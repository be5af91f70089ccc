// package services implements the music service clients: metadata lookup and direct-link resolution
package services

import (
	"context"

	"github.com/desertthunder/ymx/internal/models"
)

// Library is the metadata surface the player needs after startup.
type Library interface {
	// LikedMusicTracks returns the user's liked tracks whose primary album is music.
	LikedMusicTracks(ctx context.Context, uid uint64) ([]models.Track, error)

	// Playlists lists the user's playlists.
	Playlists(ctx context.Context, uid uint64) ([]models.Playlist, error)

	// TracksFromPlaylist returns the full track list of a playlist.
	TracksFromPlaylist(ctx context.Context, playlist models.Playlist) ([]models.Track, error)
}

// LinkResolver turns a track identifier into its audio bytes.
type LinkResolver interface {
	Resolve(ctx context.Context, id models.TrackID) (*models.TrackAudioBlob, error)
}

var (
	_ Library      = (*Client)(nil)
	_ LinkResolver = (*Resolver)(nil)
)

// envelope is the service's standard response wrapper.
type envelope[T any] struct {
	Result T `json:"result"`
}

type accountStatus struct {
	Account models.Account `json:"account"`
}

type likesResult struct {
	Library struct {
		UID    models.FlexID     `json:"uid"`
		Tracks []models.TrackRef `json:"tracks"`
	} `json:"library"`
}

type playlistTrackItem struct {
	Track *models.Track `json:"track"`
}

type playlistResult struct {
	models.Playlist
	Tracks []playlistTrackItem `json:"tracks"`
}
