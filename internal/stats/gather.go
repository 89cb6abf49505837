package stats

import (
	"context"
	"time"
)

// indicatorValue is one slot of a bounded parallel fetch. OK stays false when
// the task failed or missed the deadline.
type indicatorValue struct {
	Value float64
	OK    bool
}

// gatherWithTimeout runs every task concurrently and collects results until
// all finish or the timeout passes, whichever comes first. Results that
// arrived in time are kept; late slots stay unset. The derived context
// cancels in-flight HTTP requests once the deadline fires.
func gatherWithTimeout(ctx context.Context, timeout time.Duration, tasks []func(context.Context) (float64, bool)) []indicatorValue {
	results := make([]indicatorValue, len(tasks))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type slot struct {
		idx   int
		value float64
		ok    bool
	}
	ch := make(chan slot, len(tasks))
	for i, task := range tasks {
		go func(i int, task func(context.Context) (float64, bool)) {
			v, ok := task(ctx)
			ch <- slot{idx: i, value: v, ok: ok}
		}(i, task)
	}

	for range tasks {
		select {
		case s := <-ch:
			if s.ok {
				results[s.idx] = indicatorValue{Value: s.value, OK: true}
			}
		case <-ctx.Done():
			return results
		}
	}
	return results
}
