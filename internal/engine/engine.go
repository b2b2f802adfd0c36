// package engine is the shuffle-and-queue orchestrator: it resolves a
// source track list, applies the random permutation, finds a playback
// device, starts the first track, and drains the remainder into the remote
// queue while streaming progress events.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vuciv/true-random-shuffle/internal/models"
	"github.com/vuciv/true-random-shuffle/internal/queue"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"github.com/vuciv/true-random-shuffle/internal/shuffle"
	"github.com/vuciv/true-random-shuffle/internal/spotify"
)

// bannerDuration is how long the capped-run completion banner stays visible
// before a clearing event is emitted.
const bannerDuration = 2 * time.Second

// Library resolves source track collections. Satisfied by [spotify.Client]
// and by the read-through catalog cache.
type Library interface {
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)
	SavedTracks(ctx context.Context) ([]models.Track, error)
}

// Player drives the remote playback device. Satisfied by [spotify.Client].
type Player interface {
	Devices(ctx context.Context) ([]models.Device, error)
	Queue(ctx context.Context) ([]models.Track, error)
	TransferPlayback(ctx context.Context, deviceID string) error
	SetShuffle(ctx context.Context, enabled bool) error
	Play(ctx context.Context, deviceID string, uris ...string) error
	QueueTrack(ctx context.Context, uri string) error
}

// Request names a shuffle source. Tracks may carry a pre-resolved list; when
// absent, empty, or containing an unplayable entry the engine resolves the
// list itself from Playlist.
type Request struct {
	Playlist models.Playlist
	Tracks   []models.Track
}

// Engine runs shuffle-and-queue operations, one at a time.
type Engine struct {
	library  Library
	player   Player
	shuffler shuffle.Func
	cfg      shared.ShuffleConfig
	logger   *log.Logger

	// openDeviceApp is the best-effort deep-link hand-off used when no
	// playback device is available.
	openDeviceApp func() error

	running     sync.Mutex
	needsReauth atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithShuffler replaces the permutation source.
func WithShuffler(fn shuffle.Func) Option {
	return func(e *Engine) { e.shuffler = fn }
}

// WithDeviceHandoff replaces the native-app deep-link opener.
func WithDeviceHandoff(fn func() error) Option {
	return func(e *Engine) { e.openDeviceApp = fn }
}

// New creates an Engine.
func New(library Library, player Player, cfg shared.ShuffleConfig, logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	e := &Engine{
		library:  library,
		player:   player,
		shuffler: shuffle.Uniform,
		cfg:      cfg,
		logger:   logger,
		openDeviceApp: func() error {
			return shared.OpenBrowser("spotify:")
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NeedsReauth reports whether a run hit a missing-scope condition. The flag
// is sticky until ClearReauth: the UI shows a persistent "reconnect" hint.
func (e *Engine) NeedsReauth() bool {
	return e.needsReauth.Load()
}

// ClearReauth resets the re-auth hint, after a fresh login.
func (e *Engine) ClearReauth() {
	e.needsReauth.Store(false)
}

// Run is a single in-flight shuffle operation.
type Run struct {
	updates chan Update
	state   atomic.Int32

	started bool
	err     error
	done    chan struct{}
}

// Updates returns the run's progress stream. The channel is bounded, never
// blocks the engine, and is closed when the run reaches a terminal state.
func (r *Run) Updates() <-chan Update {
	return r.updates
}

// State returns the run's current lifecycle state.
func (r *Run) State() State {
	return State(r.state.Load())
}

// Wait blocks until the run finishes. The boolean mirrors the run outcome:
// true only when playback started and the queue drained. A false with a nil
// error is a user-actionable no-op (empty source, no device, cancellation).
func (r *Run) Wait() (bool, error) {
	<-r.done
	return r.started, r.err
}

func (r *Run) setState(s State) {
	r.state.Store(int32(s))
}

// emit delivers an update without ever blocking the run. A slow consumer
// loses intermediate snapshots, not the stream's closure.
func (r *Run) emit(u Update) {
	select {
	case r.updates <- u:
	default:
	}
}

// Shuffle starts a shuffle-and-queue run for the given source.
//
// Only one run may be active; a second request while one is draining is
// rejected with [shared.ErrShuffleInProgress] rather than interleaving two
// submission streams onto the same remote queue.
func (e *Engine) Shuffle(ctx context.Context, req Request) (*Run, error) {
	if !e.running.TryLock() {
		return nil, shared.ErrShuffleInProgress
	}

	run := &Run{
		updates: make(chan Update, 16),
		done:    make(chan struct{}),
	}

	go func() {
		defer e.running.Unlock()
		defer close(run.done)
		defer close(run.updates)

		started, err := e.execute(ctx, req, run)
		run.started, run.err = started, err
	}()

	return run, nil
}

// execute walks the run through its states. Returning (false, nil) is a
// no-op outcome, not a failure.
func (e *Engine) execute(ctx context.Context, req Request, run *Run) (bool, error) {
	run.setState(ResolvingTracks)
	run.emit(Update{IsQueueing: true, Message: "Fetching tracks..."})

	tracks, err := e.resolveTracks(ctx, req)
	if err != nil {
		if cancelled(err) {
			run.setState(Cancelled)
			return false, nil
		}
		run.setState(Failed)
		return false, err
	}
	if len(tracks) == 0 {
		e.logger.Info("nothing to shuffle", "source", req.Playlist.Name, "reason", shared.ErrEmptyCollection)
		run.setState(Done)
		run.emit(Update{Message: "No tracks to shuffle."})
		return false, nil
	}

	shuffled := shuffle.Tracks(tracks, e.shuffler)
	capped := len(shuffled) > e.cfg.MaxQueueLength
	if capped {
		// Prefix of the one permutation, never a second sampling: the
		// played track and the queued remainder come from the same draw.
		shuffled = shuffled[:e.cfg.MaxQueueLength]
	}

	run.setState(DeviceCheck)
	device, err := e.resolveDevice(ctx, run)
	if err != nil {
		if cancelled(err) {
			run.setState(Cancelled)
			return false, nil
		}
		run.setState(Failed)
		return false, err
	}
	if device == nil {
		e.logger.Warn("shuffle run ended without a device", "reason", shared.ErrNoActiveDevice)
		run.setState(Done)
		run.emit(Update{Message: "No active device. Open Spotify somewhere and try again."})
		return false, nil
	}

	if e.cfg.QueueCheckEnabled {
		e.checkQueue(ctx, run)
	}

	run.setState(StartingPlayback)
	if err := e.startPlayback(ctx, device.ID, shuffled[0]); err != nil {
		if cancelled(err) {
			run.setState(Cancelled)
			return false, nil
		}
		run.setState(Failed)
		return false, fmt.Errorf("failed to start playback: %w", err)
	}

	run.setState(DrainingQueue)
	message := fmt.Sprintf("Queueing %d tracks...", len(shuffled))
	if capped {
		message = fmt.Sprintf("Large playlist: queueing a random %d of %d tracks...",
			len(shuffled), len(tracks))
	}
	run.emit(Update{IsQueueing: true, Progress: 1, Total: len(shuffled), Message: message})

	pipeline := queue.NewPipeline(e.player, e.cfg.QueueDelay(), queue.DefaultPolicy(), e.logger)
	_, err = pipeline.Drain(ctx, shuffled[1:], func(p queue.Progress) {
		run.emit(Update{
			IsQueueing: true,
			Progress:   p.Completed + 1,
			Total:      len(shuffled),
			Message:    message,
		})
	})
	if err != nil {
		if cancelled(err) {
			run.setState(Cancelled)
			return false, nil
		}
		run.setState(Failed)
		return false, err
	}

	run.setState(Done)
	if capped {
		run.emit(Update{
			Progress: len(shuffled),
			Total:    len(shuffled),
			Message:  fmt.Sprintf("Shuffled! Queued a random %d of %d tracks.", len(shuffled), len(tracks)),
		})
		sleepCtx(ctx, bannerDuration)
		run.emit(Update{Progress: len(shuffled), Total: len(shuffled)})
	} else {
		run.emit(Update{Progress: len(shuffled), Total: len(shuffled), Message: "Shuffled!"})
	}

	e.logger.Info("shuffle complete", "source", req.Playlist.Name, "queued", len(shuffled))
	return true, nil
}

// resolveTracks produces the source track list, fetching it when the request
// did not carry a usable one.
func (e *Engine) resolveTracks(ctx context.Context, req Request) ([]models.Track, error) {
	if usable(req.Tracks) {
		return req.Tracks, nil
	}

	if req.Playlist.ID == models.LikedSongsID {
		tracks, err := e.library.SavedTracks(ctx)
		if spotify.IsInsufficientScope(err) {
			// Common for older grants. Degrade to empty and flag for
			// re-auth instead of failing the whole app surface.
			e.needsReauth.Store(true)
			e.logger.Warn("saved-tracks scope missing, degrading to empty collection")
			return nil, nil
		}
		return tracks, err
	}

	if req.Playlist.ID == "" {
		return nil, fmt.Errorf("%w: no playlist in request", shared.ErrInvalidArgument)
	}
	return e.library.PlaylistTracks(ctx, req.Playlist.ID)
}

// usable reports whether a caller-supplied track list can be queued as-is.
func usable(tracks []models.Track) bool {
	if len(tracks) == 0 {
		return false
	}
	for _, t := range tracks {
		if !t.Playable() {
			return false
		}
	}
	return true
}

// resolveDevice picks the active device, falling back to the first listed.
// With no devices at all it hands off to the native app once and re-polls
// after a settle delay; a nil result means the run should end success-false.
func (e *Engine) resolveDevice(ctx context.Context, run *Run) (*models.Device, error) {
	devices, err := e.player.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if d := pick(devices); d != nil {
		return d, nil
	}

	run.emit(Update{IsQueueing: true, Message: "Waking up Spotify..."})
	if err := e.openDeviceApp(); err != nil {
		e.logger.Debug("device hand-off failed", "error", err)
	}
	if err := sleepCtx(ctx, e.cfg.DeviceSettle()); err != nil {
		return nil, err
	}

	// One re-poll only. The engine never loops waiting for a device.
	devices, err = e.player.Devices(ctx)
	if err != nil {
		return nil, err
	}
	return pick(devices), nil
}

func pick(devices []models.Device) *models.Device {
	for i := range devices {
		if devices[i].Active {
			return &devices[i]
		}
	}
	if len(devices) > 0 {
		return &devices[0]
	}
	return nil
}

// checkQueue probes the remote queue before draining. Purely informational;
// the provider offers no way to clear a queue, so a non-empty one is only
// reported.
func (e *Engine) checkQueue(ctx context.Context, run *Run) {
	pending, err := e.player.Queue(ctx)
	if err != nil {
		e.logger.Debug("queue probe failed", "error", err)
		return
	}
	if len(pending) > 0 {
		e.logger.Info("remote queue not empty before drain", "pending", len(pending))
		run.emit(Update{IsQueueing: true,
			Message: fmt.Sprintf("Note: %d tracks already queued will play first.", len(pending))})
	}
}

// startPlayback points the provider at the chosen device and plays exactly
// the first shuffled track. Provider-side shuffle is switched off first so
// it cannot reorder the drained queue.
func (e *Engine) startPlayback(ctx context.Context, deviceID string, first models.Track) error {
	if err := e.player.SetShuffle(ctx, false); err != nil {
		e.logger.Debug("could not disable provider shuffle", "error", err)
	}
	if err := e.player.TransferPlayback(ctx, deviceID); err != nil {
		return err
	}
	return e.player.Play(ctx, deviceID, first.URI)
}

func cancelled(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	apiErr, ok := spotify.AsError(err)
	return ok && apiErr.Kind == spotify.Cancelled
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
