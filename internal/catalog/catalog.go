// package catalog is the local read-through cache for remote collections.
//
// Playlist listings and per-source track lists are persisted in SQLite with
// a freshness window; within the window reads never touch the network, and a
// failed remote fetch falls back to stale rows when any exist. The cache
// also carries the synthetic liked-songs entry so the UI sees one uniform
// playlist listing.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vuciv/true-random-shuffle/internal/models"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"github.com/vuciv/true-random-shuffle/internal/spotify"
)

// PlaylistsSyncKey marks the playlist listing's last sync in track_syncs.
// Callers pass it to Invalidate to force a listing refresh.
const PlaylistsSyncKey = "playlists"

// Source is the remote side of the cache. Satisfied by [spotify.Client].
type Source interface {
	Playlists(ctx context.Context) ([]models.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)
	SavedTracks(ctx context.Context) ([]models.Track, error)
	SavedTrackCount(ctx context.Context) (int, error)
}

// Catalog caches remote collections in SQLite. Implements [engine.Library].
type Catalog struct {
	db     *sql.DB
	source Source
	ttl    time.Duration
	logger *log.Logger
	now    func() time.Time
}

// New creates a Catalog with the given freshness window.
func New(db *sql.DB, source Source, ttl time.Duration, logger *log.Logger) *Catalog {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Catalog{db: db, source: source, ttl: ttl, logger: logger, now: time.Now}
}

// Playlists returns the user's playlists plus the liked-songs sentinel,
// sentinel first. Served from cache within the freshness window.
func (c *Catalog) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if c.fresh(PlaylistsSyncKey) {
		cached, err := c.loadPlaylists()
		if err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	playlists, err := c.source.Playlists(ctx)
	if err != nil {
		if stale, loadErr := c.loadPlaylists(); loadErr == nil && len(stale) > 0 {
			c.logger.Warn("playlist refresh failed, serving stale cache", "error", err)
			return stale, nil
		}
		return nil, err
	}

	liked := c.likedSentinel(ctx)
	combined := append([]models.Playlist{liked}, playlists...)
	models.SortPlaylists(combined)

	if err := c.savePlaylists(combined); err != nil {
		c.logger.Warn("failed to cache playlists", "error", err)
	}
	return combined, nil
}

// likedSentinel builds the liked-songs entry, with a best-effort count. A
// missing library scope yields a zero count, not a failure.
func (c *Catalog) likedSentinel(ctx context.Context) models.Playlist {
	count, err := c.source.SavedTrackCount(ctx)
	if err != nil {
		if !spotify.IsInsufficientScope(err) {
			c.logger.Debug("saved-track count unavailable", "error", err)
		}
		count = 0
	}
	return models.LikedSongs(count)
}

// PlaylistTracks returns a playlist's tracks, cached per source.
func (c *Catalog) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	return c.tracks(ctx, playlistID)
}

// SavedTracks returns the liked-songs library, cached under the sentinel id.
func (c *Catalog) SavedTracks(ctx context.Context) ([]models.Track, error) {
	return c.tracks(ctx, models.LikedSongsID)
}

func (c *Catalog) tracks(ctx context.Context, sourceID string) ([]models.Track, error) {
	if c.fresh(sourceID) {
		cached, err := c.loadTracks(sourceID)
		if err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	var remote []models.Track
	var err error
	if sourceID == models.LikedSongsID {
		remote, err = c.source.SavedTracks(ctx)
	} else {
		remote, err = c.source.PlaylistTracks(ctx, sourceID)
	}
	if err != nil {
		// Scope failures must reach the engine so it can degrade and
		// flag re-auth; everything else prefers stale data.
		if !spotify.IsInsufficientScope(err) && ctx.Err() == nil {
			if stale, loadErr := c.loadTracks(sourceID); loadErr == nil && len(stale) > 0 {
				c.logger.Warn("track refresh failed, serving stale cache",
					"source", sourceID, "error", err)
				return stale, nil
			}
		}
		return nil, err
	}

	if err := c.saveTracks(sourceID, remote); err != nil {
		c.logger.Warn("failed to cache tracks", "source", sourceID, "error", err)
	}
	return remote, nil
}

// Invalidate drops the sync marker for a source so the next read refetches.
func (c *Catalog) Invalidate(sourceID string) error {
	_, err := c.db.Exec("DELETE FROM track_syncs WHERE source_id = ?", sourceID)
	if err != nil {
		return fmt.Errorf("failed to invalidate source %s: %w", sourceID, err)
	}
	return nil
}

// fresh reports whether a source's last sync is within the freshness window.
func (c *Catalog) fresh(sourceID string) bool {
	var syncedAt time.Time
	err := c.db.QueryRow("SELECT synced_at FROM track_syncs WHERE source_id = ?", sourceID).Scan(&syncedAt)
	if err != nil {
		return false
	}
	return c.now().Sub(syncedAt) < c.ttl
}

func (c *Catalog) loadPlaylists() ([]models.Playlist, error) {
	rows, err := c.db.Query(`
		SELECT id, name, uri, owner, track_count, image_url, liked
		FROM playlists ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		var p models.Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.URI, &p.Owner, &p.TrackCount, &p.ImageURL, &p.Liked); err != nil {
			return nil, fmt.Errorf("failed to scan playlist row: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

func (c *Catalog) savePlaylists(playlists []models.Playlist) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin playlist save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM playlists"); err != nil {
		return fmt.Errorf("failed to clear playlist cache: %w", err)
	}

	now := c.now().UTC()
	for i, p := range playlists {
		_, err := tx.Exec(`
			INSERT INTO playlists (id, name, uri, owner, track_count, image_url, liked, position, synced_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.URI, p.Owner, p.TrackCount, p.ImageURL, p.Liked, i, now)
		if err != nil {
			return fmt.Errorf("failed to insert playlist %s: %w", p.ID, err)
		}
	}

	if err := recordSync(tx, PlaylistsSyncKey, now); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Catalog) loadTracks(sourceID string) ([]models.Track, error) {
	rows, err := c.db.Query(`
		SELECT id, name, uri, artists, album, duration_ms, external_url
		FROM tracks WHERE source_id = ? ORDER BY position
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached tracks: %w", err)
	}
	defer rows.Close()

	var tracks []models.Track
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Name, &t.URI, &t.Artists, &t.Album, &t.DurationMS, &t.ExternalURL); err != nil {
			return nil, fmt.Errorf("failed to scan track row: %w", err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

func (c *Catalog) saveTracks(sourceID string, tracks []models.Track) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin track save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tracks WHERE source_id = ?", sourceID); err != nil {
		return fmt.Errorf("failed to clear track cache: %w", err)
	}

	for i, t := range tracks {
		_, err := tx.Exec(`
			INSERT INTO tracks (source_id, position, id, name, uri, artists, album, duration_ms, external_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sourceID, i, t.ID, t.Name, t.URI, t.Artists, t.Album, t.DurationMS, t.ExternalURL)
		if err != nil {
			return fmt.Errorf("failed to insert track %s: %w", t.URI, err)
		}
	}

	if err := recordSync(tx, sourceID, c.now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

func recordSync(tx *sql.Tx, sourceID string, at time.Time) error {
	_, err := tx.Exec(`
		INSERT INTO track_syncs (source_id, synced_at) VALUES (?, ?)
		ON CONFLICT(source_id) DO UPDATE SET synced_at = excluded.synced_at
	`, sourceID, at)
	if err != nil {
		return fmt.Errorf("failed to record sync for %s: %w", sourceID, err)
	}
	return nil
}
