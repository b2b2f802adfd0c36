package spotify

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vuciv/true-random-shuffle/internal/models"
)

// Devices lists the user's available playback devices.
func (c *Client) Devices(ctx context.Context) ([]models.Device, error) {
	var resp wireDeviceList
	if err := c.do(ctx, http.MethodGet, "/me/player/devices", nil, nil, &resp); err != nil {
		return nil, err
	}

	devices := make([]models.Device, 0, len(resp.Devices))
	for _, d := range resp.Devices {
		devices = append(devices, d.toModel())
	}
	return devices, nil
}

// PlayerState retrieves the current playback state. A 204 from the provider
// means nothing is playing anywhere; that surfaces as a zero state, not an
// error.
func (c *Client) PlayerState(ctx context.Context) (models.PlayerState, error) {
	var resp wirePlayerState
	if err := c.do(ctx, http.MethodGet, "/me/player", nil, nil, &resp); err != nil {
		return models.PlayerState{}, err
	}
	return resp.toModel(), nil
}

// Queue retrieves the player's upcoming queue.
func (c *Client) Queue(ctx context.Context) ([]models.Track, error) {
	var resp wireQueue
	if err := c.do(ctx, http.MethodGet, "/me/player/queue", nil, nil, &resp); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(resp.Queue))
	for _, t := range resp.Queue {
		tracks = append(tracks, t.toModel())
	}
	return tracks, nil
}

// TransferPlayback moves playback to the given device without interrupting
// the current track.
func (c *Client) TransferPlayback(ctx context.Context, deviceID string) error {
	body := map[string]any{
		"device_ids": []string{deviceID},
		"play":       false,
	}
	return c.do(ctx, http.MethodPut, "/me/player", nil, body, nil)
}

// Play starts playback of the given track URIs on a device. An empty deviceID
// targets whatever device the provider considers active.
func (c *Client) Play(ctx context.Context, deviceID string, uris ...string) error {
	query := url.Values{}
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}

	var body any
	if len(uris) > 0 {
		body = map[string]any{"uris": uris}
	}
	return c.do(ctx, http.MethodPut, "/me/player/play", query, body, nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/me/player/pause", nil, nil, nil)
}

// Next skips to the next track.
func (c *Client) Next(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/me/player/next", nil, nil, nil)
}

// Previous skips to the previous track.
func (c *Client) Previous(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/me/player/previous", nil, nil, nil)
}

// SetShuffle toggles the provider's built-in shuffle mode. The engine turns
// this off before draining its own pre-shuffled queue.
func (c *Client) SetShuffle(ctx context.Context, enabled bool) error {
	query := url.Values{}
	if enabled {
		query.Set("state", "true")
	} else {
		query.Set("state", "false")
	}
	return c.do(ctx, http.MethodPut, "/me/player/shuffle", query, nil, nil)
}

// QueueTrack appends a single track to the player queue.
func (c *Client) QueueTrack(ctx context.Context, uri string) error {
	query := url.Values{"uri": {uri}}
	return c.do(ctx, http.MethodPost, "/me/player/queue", query, nil, nil)
}
