package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vuciv/true-random-shuffle/internal/models"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"github.com/vuciv/true-random-shuffle/internal/spotify"
)

type fakeSource struct {
	playlists      []models.Playlist
	playlistTracks map[string][]models.Track
	saved          []models.Track
	savedCount     int
	err            error

	playlistCalls int
	trackCalls    int
	savedCalls    int
}

func (f *fakeSource) Playlists(ctx context.Context) ([]models.Playlist, error) {
	f.playlistCalls++
	return f.playlists, f.err
}

func (f *fakeSource) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	f.trackCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.playlistTracks[playlistID], nil
}

func (f *fakeSource) SavedTracks(ctx context.Context) ([]models.Track, error) {
	f.savedCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.saved, nil
}

func (f *fakeSource) SavedTrackCount(ctx context.Context) (int, error) {
	return f.savedCount, f.err
}

func newTestCatalog(t *testing.T, source Source) (*Catalog, *sql.DB) {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return New(db, source, 30*time.Minute, shared.NewLogger(nil)), db
}

func sampleTracks(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			ID:      fmt.Sprintf("t%d", i),
			Name:    fmt.Sprintf("Track %d", i),
			URI:     fmt.Sprintf("spotify:track:%d", i),
			Artists: "Artist",
		}
	}
	return tracks
}

func TestCatalogPlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("Liked Songs Sentinel Sorts First", func(t *testing.T) {
		source := &fakeSource{
			playlists:  []models.Playlist{{ID: "pl-1", Name: "Mix", URI: "spotify:playlist:pl-1"}},
			savedCount: 42,
		}
		c, _ := newTestCatalog(t, source)

		playlists, err := c.Playlists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 2 {
			t.Fatalf("expected sentinel plus one playlist, got %d", len(playlists))
		}
		if playlists[0].ID != models.LikedSongsID || !playlists[0].Liked {
			t.Errorf("expected liked-songs first, got %+v", playlists[0])
		}
		if playlists[0].TrackCount != 42 {
			t.Errorf("expected saved count on the sentinel, got %d", playlists[0].TrackCount)
		}
	})

	t.Run("Fresh Cache Skips The Network", func(t *testing.T) {
		source := &fakeSource{playlists: []models.Playlist{{ID: "pl-1", Name: "Mix", URI: "u"}}}
		c, _ := newTestCatalog(t, source)

		if _, err := c.Playlists(ctx); err != nil {
			t.Fatalf("first read failed: %v", err)
		}
		if _, err := c.Playlists(ctx); err != nil {
			t.Fatalf("second read failed: %v", err)
		}
		if source.playlistCalls != 1 {
			t.Errorf("expected one remote fetch, got %d", source.playlistCalls)
		}
	})

	t.Run("Expired Cache Refetches", func(t *testing.T) {
		source := &fakeSource{playlists: []models.Playlist{{ID: "pl-1", Name: "Mix", URI: "u"}}}
		c, _ := newTestCatalog(t, source)

		c.Playlists(ctx)
		c.now = func() time.Time { return time.Now().Add(time.Hour) }
		c.Playlists(ctx)

		if source.playlistCalls != 2 {
			t.Errorf("expected a refetch past the freshness window, got %d calls", source.playlistCalls)
		}
	})

	t.Run("Remote Failure Serves Stale Cache", func(t *testing.T) {
		source := &fakeSource{playlists: []models.Playlist{{ID: "pl-1", Name: "Mix", URI: "u"}}}
		c, _ := newTestCatalog(t, source)

		c.Playlists(ctx)
		c.now = func() time.Time { return time.Now().Add(time.Hour) }
		source.err = errors.New("network down")

		playlists, err := c.Playlists(ctx)
		if err != nil {
			t.Fatalf("expected stale fallback, got %v", err)
		}
		if len(playlists) != 2 {
			t.Errorf("expected cached rows, got %d", len(playlists))
		}
	})
}

func TestCatalogTracks(t *testing.T) {
	ctx := context.Background()

	t.Run("Round Trips Through The Cache", func(t *testing.T) {
		source := &fakeSource{playlistTracks: map[string][]models.Track{"pl-1": sampleTracks(7)}}
		c, _ := newTestCatalog(t, source)

		first, err := c.PlaylistTracks(ctx, "pl-1")
		if err != nil {
			t.Fatalf("first read failed: %v", err)
		}
		second, err := c.PlaylistTracks(ctx, "pl-1")
		if err != nil {
			t.Fatalf("second read failed: %v", err)
		}

		if source.trackCalls != 1 {
			t.Errorf("expected one remote fetch, got %d", source.trackCalls)
		}
		if len(second) != len(first) {
			t.Fatalf("cache changed the track count: %d vs %d", len(second), len(first))
		}
		for i := range first {
			if second[i].URI != first[i].URI {
				t.Fatalf("cache broke ordering at %d: %s vs %s", i, second[i].URI, first[i].URI)
			}
		}
	})

	t.Run("Saved Tracks Cache Under The Sentinel", func(t *testing.T) {
		source := &fakeSource{saved: sampleTracks(3)}
		c, _ := newTestCatalog(t, source)

		tracks, err := c.SavedTracks(ctx)
		if err != nil || len(tracks) != 3 {
			t.Fatalf("expected 3 saved tracks, got %d (%v)", len(tracks), err)
		}
		c.SavedTracks(ctx)
		if source.savedCalls != 1 {
			t.Errorf("expected one remote fetch, got %d", source.savedCalls)
		}
	})

	t.Run("Insufficient Scope Propagates Past The Cache", func(t *testing.T) {
		source := &fakeSource{saved: sampleTracks(3)}
		c, _ := newTestCatalog(t, source)

		c.SavedTracks(ctx)
		c.now = func() time.Time { return time.Now().Add(time.Hour) }
		source.err = &spotify.Error{Kind: spotify.InsufficientScope, Status: 403}

		_, err := c.SavedTracks(ctx)
		if !spotify.IsInsufficientScope(err) {
			t.Errorf("scope errors must not be masked by stale data, got %v", err)
		}
	})

	t.Run("Invalidate Forces A Refetch", func(t *testing.T) {
		source := &fakeSource{playlistTracks: map[string][]models.Track{"pl-1": sampleTracks(2)}}
		c, _ := newTestCatalog(t, source)

		c.PlaylistTracks(ctx, "pl-1")
		if err := c.Invalidate("pl-1"); err != nil {
			t.Fatalf("invalidate failed: %v", err)
		}
		c.PlaylistTracks(ctx, "pl-1")

		if source.trackCalls != 2 {
			t.Errorf("expected refetch after invalidation, got %d calls", source.trackCalls)
		}
	})
}
