package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/vuciv/true-random-shuffle/internal/catalog"
	"github.com/vuciv/true-random-shuffle/internal/models"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"github.com/vuciv/true-random-shuffle/internal/spotify"
	tu "github.com/vuciv/true-random-shuffle/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlainln surrounds text with newlines", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlainln("done"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "\ndone\n" {
			t.Errorf("expected newline-wrapped text, got %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 7 {
			t.Errorf("expected 7 top-level commands, got %d", len(commands))
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestDescribeAPIError(t *testing.T) {
	t.Run("maps unauthenticated to login hint", func(t *testing.T) {
		err := describeAPIError(&spotify.Error{Kind: spotify.Unauthenticated})
		if !strings.Contains(err.Error(), "auth login") {
			t.Errorf("expected login hint, got %v", err)
		}
	})

	t.Run("maps refresh failure to reconnect hint", func(t *testing.T) {
		err := describeAPIError(fmt.Errorf("listing: %w", &spotify.Error{Kind: spotify.AuthRefreshFailed}))
		if !strings.Contains(err.Error(), "auth login") {
			t.Errorf("expected reconnect hint, got %v", err)
		}
	})

	t.Run("maps insufficient scope to grant hint", func(t *testing.T) {
		err := describeAPIError(&spotify.Error{Kind: spotify.InsufficientScope})
		if !strings.Contains(err.Error(), "grant access") {
			t.Errorf("expected grant hint, got %v", err)
		}
	})

	t.Run("passes other errors through", func(t *testing.T) {
		original := errors.New("disk full")
		if got := describeAPIError(original); got != original {
			t.Errorf("expected passthrough, got %v", got)
		}
	})
}

type staticSource struct {
	playlists []models.Playlist
}

func (s *staticSource) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return s.playlists, nil
}

func (s *staticSource) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	return nil, nil
}

func (s *staticSource) SavedTracks(ctx context.Context) ([]models.Track, error) {
	return nil, nil
}

func (s *staticSource) SavedTrackCount(ctx context.Context) (int, error) {
	return 0, nil
}

func TestResolvePlaylist(t *testing.T) {
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	source := &staticSource{playlists: []models.Playlist{
		{ID: "pl-1", Name: "Road Trip", URI: "spotify:playlist:pl-1", TrackCount: 12},
	}}

	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
	runner.catalog = catalog.New(db, source, 0, nil)

	ctx := context.Background()

	t.Run("sentinel id resolves to liked songs", func(t *testing.T) {
		p, err := runner.resolvePlaylist(ctx, models.LikedSongsID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.ID != models.LikedSongsID {
			t.Errorf("expected sentinel playlist, got %q", p.ID)
		}
	})

	t.Run("matches by id", func(t *testing.T) {
		p, err := runner.resolvePlaylist(ctx, "pl-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Name != "Road Trip" {
			t.Errorf("expected Road Trip, got %q", p.Name)
		}
	})

	t.Run("matches by name case-insensitively", func(t *testing.T) {
		p, err := runner.resolvePlaylist(ctx, "road trip")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.ID != "pl-1" {
			t.Errorf("expected pl-1, got %q", p.ID)
		}
	})

	t.Run("unknown target reports not found", func(t *testing.T) {
		_, err := runner.resolvePlaylist(ctx, "does-not-exist")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})
}
