package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"
)

// PlayerStatus shows the current playback state.
func (r *Runner) PlayerStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	state, err := r.client.PlayerState(ctx)
	if err != nil {
		return describeAPIError(err)
	}

	if state.Device.ID == "" && state.Track.ID == "" {
		r.writePlain("Nothing is playing.\n")
		return nil
	}

	if state.IsPlaying {
		r.writePlain("▶ Playing on %s (%s)\n", state.Device.Name, state.Device.Type)
	} else {
		r.writePlain("⏸ Paused on %s (%s)\n", state.Device.Name, state.Device.Type)
	}

	if state.Track.ID != "" {
		r.writePlain("  %s - %s\n", state.Track.Artists, state.Track.Name)
		if state.Track.DurationMS > 0 {
			pos := time.Duration(state.ProgressMS) * time.Millisecond
			total := time.Duration(state.Track.DurationMS) * time.Millisecond
			r.writePlain("  %d:%02d / %d:%02d\n",
				int(pos.Minutes()), int(pos.Seconds())%60,
				int(total.Minutes()), int(total.Seconds())%60)
		}
	}

	if state.ShuffleState {
		r.writePlain("  Provider shuffle mode is ON\n")
	}
	return nil
}

// PlayerDevices lists the available playback devices.
func (r *Runner) PlayerDevices(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	devices, err := r.client.Devices(ctx)
	if err != nil {
		return describeAPIError(err)
	}

	if len(devices) == 0 {
		r.writePlain("No playback devices found. Open Spotify on a device first.\n")
		return nil
	}

	r.writePlain("Found %d devices:\n\n", len(devices))
	for i, d := range devices {
		marker := " "
		if d.Active {
			marker = "*"
		}
		r.writePlain("%s %d. %s (%s)\n", marker, i+1, d.Name, d.Type)
	}
	return nil
}

// PlayerPause pauses playback.
func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}
	if err := r.client.Pause(ctx); err != nil {
		return describeAPIError(err)
	}
	r.writePlain("⏸ Paused\n")
	return nil
}

// PlayerNext skips to the next track.
func (r *Runner) PlayerNext(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}
	if err := r.client.Next(ctx); err != nil {
		return describeAPIError(err)
	}
	r.writePlain("⏭ Skipped\n")
	return nil
}

// PlayerPrevious skips to the previous track.
func (r *Runner) PlayerPrevious(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}
	if err := r.client.Previous(ctx); err != nil {
		return describeAPIError(err)
	}
	r.writePlain("⏮ Back\n")
	return nil
}

// PlayerShuffleMode toggles the provider's built-in shuffle mode. This is
// the mode the engine disables before queueing its own random order.
func (r *Runner) PlayerShuffleMode(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(cmd.String("config")); err != nil {
		return err
	}

	enabled := cmd.Bool("on")
	if err := r.client.SetShuffle(ctx, enabled); err != nil {
		return describeAPIError(err)
	}

	if enabled {
		r.writePlain("Provider shuffle mode enabled\n")
	} else {
		r.writePlain("Provider shuffle mode disabled\n")
	}
	return nil
}
