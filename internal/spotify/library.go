package spotify

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vuciv/true-random-shuffle/internal/fetch"
	"github.com/vuciv/true-random-shuffle/internal/models"
)

func pageQuery(limit, offset int) url.Values {
	return url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
}

// Me retrieves the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (models.User, error) {
	var user wireUser
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &user); err != nil {
		return models.User{}, err
	}
	return user.toModel(), nil
}

// PlaylistsPage retrieves one page of the user's playlists.
func (c *Client) PlaylistsPage(ctx context.Context, limit, offset int) (fetch.Page[models.Playlist], error) {
	var resp wirePage[wirePlaylist]
	if err := c.do(ctx, http.MethodGet, "/me/playlists", pageQuery(limit, offset), nil, &resp); err != nil {
		return fetch.Page[models.Playlist]{}, err
	}

	items := make([]models.Playlist, 0, len(resp.Items))
	for _, p := range resp.Items {
		items = append(items, p.toModel())
	}
	return fetch.Page[models.Playlist]{Items: items, Total: resp.Total}, nil
}

// Playlists retrieves the user's complete playlist collection.
func (c *Client) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return fetch.All(ctx, c.PlaylistsPage, c.fetchOptions())
}

// PlaylistTracksPage retrieves one page of a playlist's tracks. Entries whose
// track object is null (removed or regionally unavailable) are dropped.
func (c *Client) PlaylistTracksPage(playlistID string) fetch.PageFunc[models.Track] {
	return func(ctx context.Context, limit, offset int) (fetch.Page[models.Track], error) {
		var resp wirePage[wirePlaylistTrack]
		path := "/playlists/" + url.PathEscape(playlistID) + "/tracks"
		if err := c.do(ctx, http.MethodGet, path, pageQuery(limit, offset), nil, &resp); err != nil {
			return fetch.Page[models.Track]{}, err
		}

		items := make([]models.Track, 0, len(resp.Items))
		for _, entry := range resp.Items {
			if entry.Track == nil {
				continue
			}
			items = append(items, entry.Track.toModel())
		}
		return fetch.Page[models.Track]{Items: items, Total: resp.Total}, nil
	}
}

// PlaylistTracks retrieves every track of a playlist.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	return fetch.All(ctx, c.PlaylistTracksPage(playlistID), c.fetchOptions())
}

// SavedTracksPage retrieves one page of the user's saved tracks.
func (c *Client) SavedTracksPage(ctx context.Context, limit, offset int) (fetch.Page[models.Track], error) {
	var resp wirePage[wireSavedTrack]
	if err := c.do(ctx, http.MethodGet, "/me/tracks", pageQuery(limit, offset), nil, &resp); err != nil {
		return fetch.Page[models.Track]{}, err
	}

	items := make([]models.Track, 0, len(resp.Items))
	for _, entry := range resp.Items {
		if entry.Track == nil {
			continue
		}
		items = append(items, entry.Track.toModel())
	}
	return fetch.Page[models.Track]{Items: items, Total: resp.Total}, nil
}

// SavedTracks retrieves the user's complete saved-tracks library.
func (c *Client) SavedTracks(ctx context.Context) ([]models.Track, error) {
	return fetch.All(ctx, c.SavedTracksPage, c.fetchOptions())
}

// SavedTrackCount retrieves only the library total, via a single minimal page.
func (c *Client) SavedTrackCount(ctx context.Context) (int, error) {
	page, err := c.SavedTracksPage(ctx, 1, 0)
	if err != nil {
		return 0, err
	}
	return page.Total, nil
}

func (c *Client) fetchOptions() fetch.Options {
	opts := c.fetching
	opts.Logger = c.logger
	return opts
}
