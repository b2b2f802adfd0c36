// Wire types for the Spotify Web API, based on
// https://developer.spotify.com/documentation/web-api/reference/
//
// These stay unexported: callers only ever see the domain types in
// [models], mapped at this boundary.
package spotify

import (
	"strings"

	"github.com/vuciv/true-random-shuffle/internal/models"
)

type wireImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type wireArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type wireAlbum struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Images []wireImage `json:"images"`
	URI    string      `json:"uri"`
}

type wireExternalURLs struct {
	Spotify string `json:"spotify"`
}

type wireTrack struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	URI          string           `json:"uri"`
	Artists      []wireArtist     `json:"artists"`
	Album        wireAlbum        `json:"album"`
	DurationMS   int              `json:"duration_ms"`
	ExternalURLs wireExternalURLs `json:"external_urls"`
}

func (t wireTrack) toModel() models.Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return models.Track{
		ID:          t.ID,
		Name:        t.Name,
		URI:         t.URI,
		Artists:     strings.Join(names, ", "),
		Album:       t.Album.Name,
		DurationMS:  t.DurationMS,
		ExternalURL: t.ExternalURLs.Spotify,
	}
}

type wireOwner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type wireTrackRef struct {
	Total int `json:"total"`
}

type wirePlaylist struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	URI    string       `json:"uri"`
	Owner  wireOwner    `json:"owner"`
	Tracks wireTrackRef `json:"tracks"`
	Images []wireImage  `json:"images"`
}

func (p wirePlaylist) toModel() models.Playlist {
	var image string
	if len(p.Images) > 0 {
		image = p.Images[0].URL
	}
	return models.Playlist{
		ID:         p.ID,
		Name:       p.Name,
		URI:        p.URI,
		Owner:      p.Owner.DisplayName,
		TrackCount: p.Tracks.Total,
		ImageURL:   image,
	}
}

// wirePage is the provider's shared pagination envelope.
type wirePage[T any] struct {
	Items  []T     `json:"items"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
	Next   *string `json:"next"`
}

// wirePlaylistTrack wraps a track in playlist context. Track is a pointer:
// the provider returns null entries for removed or unavailable tracks.
type wirePlaylistTrack struct {
	AddedAt string     `json:"added_at"`
	Track   *wireTrack `json:"track"`
}

type wireSavedTrack struct {
	AddedAt string     `json:"added_at"`
	Track   *wireTrack `json:"track"`
}

type wireUser struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Email       string      `json:"email"`
	Images      []wireImage `json:"images"`
}

func (u wireUser) toModel() models.User {
	var image string
	if len(u.Images) > 0 {
		image = u.Images[0].URL
	}
	return models.User{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Email:       u.Email,
		ImageURL:    image,
	}
}

type wireDevice struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"is_active"`
}

func (d wireDevice) toModel() models.Device {
	return models.Device{ID: d.ID, Name: d.Name, Type: d.Type, Active: d.Active}
}

type wireDeviceList struct {
	Devices []wireDevice `json:"devices"`
}

type wirePlayerState struct {
	Device       wireDevice `json:"device"`
	IsPlaying    bool       `json:"is_playing"`
	ShuffleState bool       `json:"shuffle_state"`
	ProgressMS   int        `json:"progress_ms"`
	Item         *wireTrack `json:"item"`
}

func (s wirePlayerState) toModel() models.PlayerState {
	state := models.PlayerState{
		Device:       s.Device.toModel(),
		IsPlaying:    s.IsPlaying,
		ShuffleState: s.ShuffleState,
		ProgressMS:   s.ProgressMS,
	}
	if s.Item != nil {
		state.Track = s.Item.toModel()
	}
	return state
}

type wireQueue struct {
	CurrentlyPlaying *wireTrack  `json:"currently_playing"`
	Queue            []wireTrack `json:"queue"`
}
