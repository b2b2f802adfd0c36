// package fetch pulls large paginated collections with bounded concurrency.
//
// The provider caps page size at 50 and throttles aggressive clients, so
// pages after the first are fetched in small concurrent windows with a short
// pause between windows. Ordering of the assembled result matches the
// collection's server-side order regardless of per-page completion order.
package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vuciv/true-random-shuffle/internal/shared"
)

// Page is one slice of a paginated collection.
type Page[T any] struct {
	Items []T
	Total int
}

// PageFunc fetches a single page at the given offset.
type PageFunc[T any] func(ctx context.Context, limit, offset int) (Page[T], error)

// Options tunes the windowed fetch. Zero values fall back to the defaults
// the provider tolerates well.
type Options struct {
	PageSize    int           // items per page, capped by the provider at 50
	WindowSize  int           // concurrent page requests per window
	WindowDelay time.Duration // pause between windows
	Logger      *log.Logger
}

func (o Options) normalized() Options {
	if o.PageSize <= 0 || o.PageSize > 50 {
		o.PageSize = 50
	}
	if o.WindowSize <= 0 {
		o.WindowSize = 5
	}
	if o.WindowDelay <= 0 {
		o.WindowDelay = 100 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = shared.NewLogger(nil)
	}
	return o
}

// All fetches every page of a collection and returns the assembled items.
//
// The first page is fetched alone to learn the collection total; when it
// covers everything, no further requests are made. Remaining offsets are
// fetched WindowSize at a time. A page that fails for a non-cancellation
// reason contributes an empty slice and is logged, never aborting the whole
// fetch; cancellation aborts immediately.
func All[T any](ctx context.Context, fn PageFunc[T], opts Options) ([]T, error) {
	opts = opts.normalized()

	first, err := fn(ctx, opts.PageSize, 0)
	if err != nil {
		return nil, err
	}
	if first.Total <= len(first.Items) || len(first.Items) == 0 {
		return first.Items, nil
	}

	remaining := (first.Total - opts.PageSize + opts.PageSize - 1) / opts.PageSize
	pages := make([][]T, remaining)

	for start := 0; start < remaining; start += opts.WindowSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := min(start+opts.WindowSize, remaining)

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				offset := (slot + 1) * opts.PageSize
				page, err := fn(ctx, opts.PageSize, offset)
				if err != nil {
					if ctx.Err() == nil {
						opts.Logger.Warn("page fetch failed, continuing without it",
							"offset", offset, "error", err)
					}
					return
				}
				pages[slot] = page.Items
			}(i)
		}
		wg.Wait()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if end < remaining {
			if err := sleepCtx(ctx, opts.WindowDelay); err != nil {
				return nil, err
			}
		}
	}

	items := make([]T, 0, first.Total)
	items = append(items, first.Items...)
	for _, page := range pages {
		items = append(items, page...)
	}
	return items, nil
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
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
