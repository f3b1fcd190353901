package connpass

import (
	"context"
	"time"
)

// pageSize is the page size used when following pagination.
const pageSize = maxCount

type pageResult[T any] struct {
	Items     []T
	Returned  int
	Available int
	Start     int
}

type pageFetcher[T any] func(ctx context.Context, opts ListOptions) (pageResult[T], error)

// collectAll calls fetch for consecutive pages of pageSize until a page comes
// back with fewer than pageSize items or the accumulated items reach the first
// page's total. A short page ends the walk whatever the counters claim. The first
// page's Available and Start describe the aggregate. fetch errors abort the
// whole collection.
func collectAll[T any](ctx context.Context, pause time.Duration, fetch pageFetcher[T]) (pageResult[T], error) {
	var all pageResult[T]
	opts := ListOptions{Start: 1, Count: pageSize}

	for page := 0; ; page++ {
		r, err := fetch(ctx, opts)
		if err != nil {
			return pageResult[T]{}, err
		}
		if page == 0 {
			all.Available = r.Available
			all.Start = r.Start
		}
		all.Items = append(all.Items, r.Items...)

		if len(r.Items) < pageSize || len(all.Items) >= all.Available {
			break
		}

		opts.Start += pageSize
		if err := sleep(ctx, pause); err != nil {
			return pageResult[T]{}, err
		}
	}

	if all.Items == nil {
		all.Items = []T{}
	}
	all.Returned = len(all.Items)
	return all, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
