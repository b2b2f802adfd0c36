package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/vuciv/true-random-shuffle/internal/catalog"
	"github.com/vuciv/true-random-shuffle/internal/models"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"github.com/vuciv/true-random-shuffle/internal/spotify"
)

// Playlists lists the user's playlists, liked songs first.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	if cmd.Bool("refresh") {
		if err := r.catalog.Invalidate(catalog.PlaylistsSyncKey); err != nil {
			r.logger.Warn("failed to invalidate playlist cache", "error", err)
		}
	}

	playlists, err := r.catalog.Playlists(ctx)
	if err != nil {
		return describeAPIError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d\n", p.TrackCount)
		if p.Owner != "" {
			r.writePlain("   Owner: %s\n", p.Owner)
		}
		r.writePlain("\n")
	}
	return nil
}

// Tracks lists the tracks of one playlist, or the saved-tracks library.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("playlist")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id required (or 'liked-songs')", shared.ErrMissingArgument)
	}

	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	if cmd.Bool("refresh") {
		if err := r.catalog.Invalidate(playlistID); err != nil {
			r.logger.Warn("failed to invalidate track cache", "error", err)
		}
	}

	var tracks []models.Track
	var err error
	if playlistID == models.LikedSongsID {
		tracks, err = r.catalog.SavedTracks(ctx)
	} else {
		tracks, err = r.catalog.PlaylistTracks(ctx, playlistID)
	}
	if err != nil {
		return describeAPIError(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d tracks:\n\n", len(tracks))
	for i, t := range tracks {
		r.writePlain("%d. %s - %s\n", i+1, t.Artists, t.Name)
		if t.Album != "" {
			r.writePlain("   Album: %s\n", t.Album)
		}
		if t.DurationMS > 0 {
			d := time.Duration(t.DurationMS) * time.Millisecond
			r.writePlain("   Duration: %d:%02d\n", int(d.Minutes()), int(d.Seconds())%60)
		}
	}
	return nil
}

// describeAPIError turns executor error kinds into user-actionable messages.
func describeAPIError(err error) error {
	apiErr, ok := spotify.AsError(err)
	if !ok {
		return err
	}

	switch apiErr.Kind {
	case spotify.Unauthenticated:
		return fmt.Errorf("not authenticated: run 'shuffle auth login'")
	case spotify.AuthRefreshFailed:
		return fmt.Errorf("session expired: run 'shuffle auth login' to reconnect")
	case spotify.InsufficientScope:
		return fmt.Errorf("missing permissions: run 'shuffle auth login' to grant access")
	default:
		return err
	}
}
