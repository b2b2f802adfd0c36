package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vuciv/true-random-shuffle/internal/models"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"github.com/vuciv/true-random-shuffle/internal/spotify"
)

// scriptedSubmitter returns a scripted sequence of errors per URI; entries
// are consumed in order, then submissions succeed.
type scriptedSubmitter struct {
	failures map[string][]error
	calls    []string
}

func (s *scriptedSubmitter) QueueTrack(ctx context.Context, uri string) error {
	s.calls = append(s.calls, uri)
	queue := s.failures[uri]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	s.failures[uri] = queue[1:]
	return err
}

func rateLimited() error {
	return &spotify.Error{Kind: spotify.RateLimited, Status: 429}
}

// testPolicy keeps backoff at millisecond scale so retries are observable
// without slowing the suite.
func testPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		Backoff: func(attempt int) time.Duration {
			return time.Millisecond << attempt
		},
		Retryable: spotify.IsRateLimited,
	}
}

func trackList(n int) []models.Track {
	tracks := make([]models.Track, n)
	for i := range tracks {
		tracks[i] = models.Track{
			Name: fmt.Sprintf("Track %d", i+1),
			URI:  fmt.Sprintf("spotify:track:%d", i+1),
		}
	}
	return tracks
}

func TestPipelineDrain(t *testing.T) {
	ctx := context.Background()

	t.Run("All Succeed", func(t *testing.T) {
		sub := &scriptedSubmitter{failures: map[string][]error{}}
		p := NewPipeline(sub, time.Millisecond, testPolicy(), shared.NewLogger(nil))

		progress, err := p.Drain(ctx, trackList(5), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if progress.Succeeded != 5 || progress.Failed != 0 || progress.Completed != 5 {
			t.Errorf("unexpected progress: %+v", progress)
		}
	})

	t.Run("Preserves Submission Order", func(t *testing.T) {
		sub := &scriptedSubmitter{failures: map[string][]error{}}
		p := NewPipeline(sub, time.Millisecond, testPolicy(), shared.NewLogger(nil))

		p.Drain(ctx, trackList(4), nil)

		for i, uri := range sub.calls {
			if want := fmt.Sprintf("spotify:track:%d", i+1); uri != want {
				t.Fatalf("call %d out of order: got %s, want %s", i, uri, want)
			}
		}
	})

	t.Run("Retries Rate Limits And Skips Permanent Failures", func(t *testing.T) {
		// Track 4 is throttled three times then accepted; track 7 fails
		// permanently. The run must still attempt all ten.
		sub := &scriptedSubmitter{failures: map[string][]error{
			"spotify:track:4": {rateLimited(), rateLimited(), rateLimited()},
			"spotify:track:7": {&spotify.Error{Kind: spotify.Forbidden, Status: 403}},
		}}
		p := NewPipeline(sub, time.Millisecond, testPolicy(), shared.NewLogger(nil))

		var reports []Progress
		progress, err := p.Drain(ctx, trackList(10), func(pr Progress) {
			reports = append(reports, pr)
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if progress.Completed != 10 {
			t.Errorf("expected progress to reach 10, got %d", progress.Completed)
		}
		if progress.Succeeded != 9 {
			t.Errorf("expected 9 successes, got %d", progress.Succeeded)
		}
		if progress.Failed != 1 {
			t.Errorf("expected 1 failure, got %d", progress.Failed)
		}
		if len(reports) != 10 {
			t.Errorf("expected one report per item, got %d", len(reports))
		}
		if last := reports[len(reports)-1]; last.Completed != 10 {
			t.Errorf("final report should show 10/10, got %+v", last)
		}
	})

	t.Run("Exhausted Retries Skip The Item", func(t *testing.T) {
		sub := &scriptedSubmitter{failures: map[string][]error{
			"spotify:track:1": {rateLimited(), rateLimited(), rateLimited(), rateLimited()},
		}}
		p := NewPipeline(sub, time.Millisecond, testPolicy(), shared.NewLogger(nil))

		progress, err := p.Drain(ctx, trackList(2), nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if progress.Succeeded != 1 || progress.Failed != 1 {
			t.Errorf("expected track 1 skipped after 4 attempts, got %+v", progress)
		}

		attempts := 0
		for _, uri := range sub.calls {
			if uri == "spotify:track:1" {
				attempts++
			}
		}
		if attempts != 4 {
			t.Errorf("expected initial attempt plus 3 retries, got %d", attempts)
		}
	})

	t.Run("Honors Longer Retry-After", func(t *testing.T) {
		policy := testPolicy()
		throttled := &spotify.Error{Kind: spotify.RateLimited, RetryAfter: 30 * time.Millisecond}

		sub := &scriptedSubmitter{failures: map[string][]error{
			"spotify:track:1": {throttled},
		}}
		p := NewPipeline(sub, time.Millisecond, policy, shared.NewLogger(nil))

		start := time.Now()
		if _, err := p.Drain(ctx, trackList(1), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
			t.Errorf("expected the provider's Retry-After to stretch the wait, took %v", elapsed)
		}
	})

	t.Run("Unplayable Track Is A Failure", func(t *testing.T) {
		sub := &scriptedSubmitter{failures: map[string][]error{}}
		p := NewPipeline(sub, time.Millisecond, testPolicy(), shared.NewLogger(nil))

		tracks := []models.Track{{Name: "No URI"}, {Name: "Ok", URI: "spotify:track:ok"}}
		progress, err := p.Drain(ctx, tracks, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if progress.Succeeded != 1 || progress.Failed != 1 {
			t.Errorf("unexpected progress: %+v", progress)
		}
		if len(sub.calls) != 1 {
			t.Errorf("unplayable track should never reach the submitter, got %v", sub.calls)
		}
	})

	t.Run("Cancellation Stops The Drain", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		sub := &scriptedSubmitter{failures: map[string][]error{}}
		p := NewPipeline(sub, time.Millisecond, testPolicy(), shared.NewLogger(nil))

		var once bool
		_, err := p.Drain(cancelCtx, trackList(10), func(pr Progress) {
			if !once {
				once = true
				cancel()
			}
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if len(sub.calls) >= 10 {
			t.Errorf("expected the drain to stop early, got %d calls", len(sub.calls))
		}
	})

	t.Run("Paces Between Items", func(t *testing.T) {
		sub := &scriptedSubmitter{failures: map[string][]error{}}
		interval := 10 * time.Millisecond
		p := NewPipeline(sub, interval, testPolicy(), shared.NewLogger(nil))

		start := time.Now()
		if _, err := p.Drain(ctx, trackList(4), nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		// First token is immediate; the remaining three wait one interval each.
		if elapsed := time.Since(start); elapsed < 3*interval {
			t.Errorf("expected at least %v of pacing, took %v", 3*interval, elapsed)
		}
	})
}
