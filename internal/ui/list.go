package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/vuciv/true-random-shuffle/internal/models"
)

var _ list.Item = playlistItem{}

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Name }
func (i playlistItem) Title() string       { return i.playlist.Name }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d tracks", i.playlist.TrackCount)
	if i.playlist.Liked {
		return fmt.Sprintf("%s • your saved tracks", desc)
	}
	if i.playlist.Owner != "" {
		desc = fmt.Sprintf("%s • by %s", desc, i.playlist.Owner)
	}
	return desc
}
