// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Create a config.toml from the embedded template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2 + PKCE",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Remove all stored credentials",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Check current authentication state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthStatus,
			},
		},
	}
}

// playlistsCommand lists the user's playlists, liked songs included.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List playlists",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Bypass the local cache",
			},
		},
		Action: r.Playlists,
	}
}

// tracksCommand lists the tracks of one playlist.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tracks",
		Usage: "List tracks in a playlist (use 'liked-songs' for your library)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "Bypass the local cache",
			},
		},
		Action: r.Tracks,
	}
}

// playerCommand handles remote playback operations
func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Inspect and control the remote player",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show current playback state",
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlayerStatus,
			},
			{
				Name:   "devices",
				Usage:  "List available playback devices",
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlayerDevices,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlayerPause,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next track",
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlayerNext,
			},
			{
				Name:   "previous",
				Usage:  "Skip to the previous track",
				Flags:  []cli.Flag{configFlag()},
				Action: r.PlayerPrevious,
			},
			{
				Name:  "shuffle-mode",
				Usage: "Toggle the provider's built-in shuffle mode",
				Flags: []cli.Flag{
					configFlag(),
					&cli.BoolFlag{
						Name:  "on",
						Usage: "Enable instead of disable",
					},
				},
				Action: r.PlayerShuffleMode,
			},
		},
	}
}

// shuffleCommand runs the shuffle-and-queue engine against a source.
func shuffleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shuffle",
		Usage: "Shuffle a playlist into the queue in true random order",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist"},
		},
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of tracks to queue",
			},
		},
		Action: r.Shuffle,
	}
}

// tuiCommand returns the top-level TUI command for interactive shuffling.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive shuffle TUI",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
