// package models defines the domain types for the shuffle-and-queue engine
package models

import "sort"

// LikedSongsID is the local identifier of the synthetic "liked songs" playlist.
//
// The provider has no playlist object for the saved-tracks library, so the
// engine models it as a sentinel whose content source is the saved-tracks
// collection.
const LikedSongsID = "liked-songs"

// LikedSongsURI is the fixed playback context identifier for the saved-tracks
// collection. It is not a playlist URI.
const LikedSongsURI = "spotify:collection:tracks"

// Track is an immutable snapshot of a provider track.
//
// Identity is URI; it is the only field playback and queue operations require.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URI         string `json:"uri"`
	Artists     string `json:"artists"`
	Album       string `json:"album"`
	DurationMS  int    `json:"duration_ms"`
	ExternalURL string `json:"external_url"`
}

// Playable reports whether the track carries the identifier queue and play
// operations need.
func (t Track) Playable() bool {
	return t.URI != ""
}

// Playlist represents a playlist, or the synthetic liked-songs collection.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	URI        string `json:"uri"`
	Owner      string `json:"owner"`
	TrackCount int    `json:"track_count"`
	ImageURL   string `json:"image_url"`
	Liked      bool   `json:"liked"`
}

// LikedSongs returns the synthetic liked-songs playlist sentinel.
func LikedSongs(trackCount int) Playlist {
	return Playlist{
		ID:         LikedSongsID,
		Name:       "Liked Songs",
		URI:        LikedSongsURI,
		TrackCount: trackCount,
		Liked:      true,
	}
}

// SortPlaylists orders a combined playlist listing for display: the
// liked-songs sentinel always first, the rest in their existing order.
func SortPlaylists(pls []Playlist) {
	sort.SliceStable(pls, func(i, j int) bool {
		return pls[i].Liked && !pls[j].Liked
	})
}

// Device is an ephemeral provider-owned playback device handle.
//
// Never persisted past one orchestration run.
type Device struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Active bool   `json:"is_active"`
}

// User is the authenticated user's profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	ImageURL    string `json:"image_url"`
}

// PlayerState is a loose view of the remote player.
type PlayerState struct {
	Device       Device `json:"device"`
	IsPlaying    bool   `json:"is_playing"`
	ShuffleState bool   `json:"shuffle_state"`
	Track        Track  `json:"track"`
	ProgressMS   int    `json:"progress_ms"`
}
