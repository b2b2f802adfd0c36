// package queue drains a track sequence into the remote player queue one
// item at a time.
//
// The provider's queue endpoint throttles bursts hard, so submission is
// strictly sequential behind a rate limiter, with exponential backoff on 429
// and skip-and-advance on permanent per-item failures. One bad track never
// aborts a run.
package queue

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vuciv/true-random-shuffle/internal/models"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"golang.org/x/time/rate"
)

// Submitter pushes one track onto the remote queue. Satisfied by
// [spotify.Client.QueueTrack] via a thin adapter or directly by the client.
type Submitter interface {
	QueueTrack(ctx context.Context, uri string) error
}

// Progress is a snapshot of a drain in flight. Completed counts attempted
// items, succeeded or not, so a consumer can render "n of total".
type Progress struct {
	Completed int
	Total     int
	Succeeded int
	Failed    int
}

// Pipeline submits tracks sequentially with baseline pacing between items.
type Pipeline struct {
	submitter Submitter
	limiter   *rate.Limiter
	policy    Policy
	logger    *log.Logger
}

// NewPipeline creates a Pipeline pacing submissions at one per interval.
func NewPipeline(submitter Submitter, interval time.Duration, policy Policy, logger *log.Logger) *Pipeline {
	if interval <= 0 {
		interval = 150 * time.Millisecond
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Pipeline{
		submitter: submitter,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		policy:    policy,
		logger:    logger,
	}
}

// Drain submits every track in order, reporting progress after each item.
//
// Per-item failures are retried per the policy and then skipped; the run
// continues to the next track. Only context cancellation stops the drain
// early. onProgress may be nil; it is called synchronously, once per item.
func (p *Pipeline) Drain(ctx context.Context, tracks []models.Track, onProgress func(Progress)) (Progress, error) {
	progress := Progress{Total: len(tracks)}

	for _, track := range tracks {
		if err := p.limiter.Wait(ctx); err != nil {
			return progress, err
		}

		if err := p.submit(ctx, track); err != nil {
			if ctx.Err() != nil {
				return progress, ctx.Err()
			}
			progress.Failed++
			p.logger.Warn("track skipped after exhausting retries",
				"track", track.Name, "uri", track.URI, "error", err)
		} else {
			progress.Succeeded++
		}

		progress.Completed++
		if onProgress != nil {
			onProgress(progress)
		}
	}

	return progress, nil
}

// submit pushes one track, retrying per the policy.
func (p *Pipeline) submit(ctx context.Context, track models.Track) error {
	if !track.Playable() {
		return shared.ErrInvalidArgument
	}

	var err error
	for attempt := 0; ; attempt++ {
		if err = p.submitter.QueueTrack(ctx, track.URI); err == nil {
			return nil
		}
		if attempt >= p.policy.MaxRetries || !p.policy.Retryable(err) {
			return err
		}

		delay := p.policy.wait(attempt, err)
		p.logger.Debug("submission throttled, backing off",
			"track", track.Name, "attempt", attempt+1, "delay", delay)
		if sleepErr := sleepCtx(ctx, delay); sleepErr != nil {
			return sleepErr
		}
	}
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
