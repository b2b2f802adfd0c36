package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/vuciv/true-random-shuffle/internal/engine"
	"github.com/vuciv/true-random-shuffle/internal/models"
	"github.com/vuciv/true-random-shuffle/internal/shared"
)

// Shuffle queues a playlist's tracks in true random order.
//
// Accepts a playlist id, 'liked-songs', or a playlist name (matched against
// the cached listing, case-insensitive).
func (r *Runner) Shuffle(ctx context.Context, cmd *cli.Command) error {
	target := cmd.StringArg("playlist")
	if target == "" {
		return fmt.Errorf("%w: playlist id or name required (or 'liked-songs')", shared.ErrMissingArgument)
	}

	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	playlist, err := r.resolvePlaylist(ctx, target)
	if err != nil {
		return describeAPIError(err)
	}

	r.writePlain("Shuffling %s...\n", playlist.Name)

	eng := r.engine
	if limit := int(cmd.Int("limit")); limit > 0 {
		cfg := r.config.Shuffle
		cfg.MaxQueueLength = limit
		eng = engine.New(r.catalog, r.client, cfg, r.logger)
	}

	run, err := eng.Shuffle(ctx, engine.Request{Playlist: playlist})
	if err != nil {
		if errors.Is(err, shared.ErrShuffleInProgress) {
			return fmt.Errorf("a shuffle is already running")
		}
		return err
	}

	for update := range run.Updates() {
		if update.IsQueueing && update.Total > 0 {
			r.writePlain("\r  Queueing tracks... (%d/%d)", update.Progress, update.Total)
			continue
		}
		if update.Message != "" {
			r.writePlain("\r  %s\n", update.Message)
		}
	}
	r.writePlain("\n")

	started, err := run.Wait()
	if err != nil {
		return describeAPIError(err)
	}
	if !started {
		if eng.NeedsReauth() {
			r.writePlain("⚠ Missing permissions for your library. Run 'shuffle auth login' to grant access.\n")
			return nil
		}
		r.writePlain("Nothing was queued.\n")
		return nil
	}

	r.writePlainln("✓ Shuffled! Playback started in true random order.")
	return nil
}

// resolvePlaylist turns a CLI argument into a playlist: sentinel id, exact
// id match, or case-insensitive name match against the cached listing.
func (r *Runner) resolvePlaylist(ctx context.Context, target string) (models.Playlist, error) {
	if target == models.LikedSongsID {
		return models.LikedSongs(0), nil
	}

	playlists, err := r.catalog.Playlists(ctx)
	if err != nil {
		return models.Playlist{}, err
	}

	for _, p := range playlists {
		if p.ID == target {
			return p, nil
		}
	}
	for _, p := range playlists {
		if strings.EqualFold(p.Name, target) {
			return p, nil
		}
	}
	return models.Playlist{}, fmt.Errorf("%w: no playlist matching %q", shared.ErrPlaylistNotFound, target)
}
