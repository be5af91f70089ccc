package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/ymx/internal/models"
)

var (
	_ list.Item = playlistItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item]. index is the
// playlist's position in the account listing, which is what LoadPlaylist takes.
type playlistItem struct {
	index    int
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Title }
func (i playlistItem) Title() string       { return i.playlist.Title }
func (i playlistItem) Description() string {
	return fmt.Sprintf("#%d • %d tracks", i.index, i.playlist.TrackCount)
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		items[i] = playlistItem{index: i, playlist: pl}
	}
	return items
}
