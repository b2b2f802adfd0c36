package fetch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// collection builds a PageFunc serving n sequential ints, recording the
// offsets requested.
func collection(n int, requested *[]int, mu *sync.Mutex) PageFunc[int] {
	return func(ctx context.Context, limit, offset int) (Page[int], error) {
		if mu != nil {
			mu.Lock()
			*requested = append(*requested, offset)
			mu.Unlock()
		}
		var items []int
		for i := offset; i < offset+limit && i < n; i++ {
			items = append(items, i)
		}
		return Page[int]{Items: items, Total: n}, nil
	}
}

func fastOptions() Options {
	return Options{PageSize: 50, WindowSize: 5, WindowDelay: time.Millisecond}
}

func TestAll(t *testing.T) {
	t.Run("Assembles Pages In Collection Order", func(t *testing.T) {
		var mu sync.Mutex
		var offsets []int
		items, err := All(context.Background(), collection(137, &offsets, &mu), fastOptions())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 137 {
			t.Fatalf("expected 137 items, got %d", len(items))
		}
		for i, v := range items {
			if v != i {
				t.Fatalf("item %d out of order: got %d", i, v)
			}
		}
		if len(offsets) != 3 {
			t.Errorf("expected 3 page requests for 137 items, got %d", len(offsets))
		}
	})

	t.Run("Single Page Short Circuits", func(t *testing.T) {
		var mu sync.Mutex
		var offsets []int
		items, err := All(context.Background(), collection(30, &offsets, &mu), fastOptions())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 30 {
			t.Errorf("expected 30 items, got %d", len(items))
		}
		if len(offsets) != 1 {
			t.Errorf("expected exactly one request, got %d", len(offsets))
		}
	})

	t.Run("Empty Collection", func(t *testing.T) {
		fn := func(ctx context.Context, limit, offset int) (Page[int], error) {
			return Page[int]{Total: 0}, nil
		}
		items, err := All(context.Background(), fn, fastOptions())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no items, got %d", len(items))
		}
	})

	t.Run("First Page Error Aborts", func(t *testing.T) {
		boom := errors.New("boom")
		fn := func(ctx context.Context, limit, offset int) (Page[int], error) {
			return Page[int]{}, boom
		}
		if _, err := All(context.Background(), fn, fastOptions()); !errors.Is(err, boom) {
			t.Errorf("expected first-page error surfaced, got %v", err)
		}
	})

	t.Run("Failed Later Page Contributes Nothing", func(t *testing.T) {
		base := collection(200, nil, nil)
		fn := func(ctx context.Context, limit, offset int) (Page[int], error) {
			if offset == 100 {
				return Page[int]{}, fmt.Errorf("page unavailable")
			}
			return base(ctx, limit, offset)
		}

		items, err := All(context.Background(), fn, fastOptions())
		if err != nil {
			t.Fatalf("expected failed page to be absorbed, got %v", err)
		}
		if len(items) != 150 {
			t.Errorf("expected 150 items with one page missing, got %d", len(items))
		}
		// Remaining pages stay in order around the gap.
		if items[99] != 99 || items[100] != 150 {
			t.Errorf("expected gap between 99 and 150, got %d then %d", items[99], items[100])
		}
	})

	t.Run("Cancellation Aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		fn := func(ctx context.Context, limit, offset int) (Page[int], error) {
			if offset > 0 {
				cancel()
				return Page[int]{}, ctx.Err()
			}
			items := make([]int, limit)
			return Page[int]{Items: items, Total: 500}, nil
		}

		if _, err := All(ctx, fn, fastOptions()); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("Window Bounds Concurrency", func(t *testing.T) {
		var mu sync.Mutex
		inflight, peak := 0, 0
		fn := func(ctx context.Context, limit, offset int) (Page[int], error) {
			mu.Lock()
			inflight++
			if inflight > peak {
				peak = inflight
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inflight--
			mu.Unlock()

			items := make([]int, limit)
			return Page[int]{Items: items, Total: 1000}, nil
		}

		if _, err := All(context.Background(), fn, fastOptions()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if peak > 5 {
			t.Errorf("expected at most 5 concurrent page fetches, saw %d", peak)
		}
	})
}
