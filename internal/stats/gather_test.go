package stats

import (
	"context"
	"testing"
	"time"
)

func TestGatherWithTimeoutAllComplete(t *testing.T) {
	tasks := []func(context.Context) (float64, bool){
		func(context.Context) (float64, bool) { return 1, true },
		func(context.Context) (float64, bool) { return 0, false },
		func(context.Context) (float64, bool) { return 3, true },
	}

	got := gatherWithTimeout(context.Background(), time.Second, tasks)
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if !got[0].OK || got[0].Value != 1 {
		t.Errorf("slot 0 = %+v", got[0])
	}
	if got[1].OK {
		t.Errorf("slot 1 = %+v, want failed task left unset", got[1])
	}
	if !got[2].OK || got[2].Value != 3 {
		t.Errorf("slot 2 = %+v", got[2])
	}
}

func TestGatherWithTimeoutKeepsPartialResults(t *testing.T) {
	tasks := []func(context.Context) (float64, bool){
		func(context.Context) (float64, bool) { return 7, true },
		func(ctx context.Context) (float64, bool) {
			<-ctx.Done()
			return 0, false
		},
	}

	start := time.Now()
	got := gatherWithTimeout(context.Background(), 50*time.Millisecond, tasks)
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("gather took %v, deadline not enforced", elapsed)
	}

	if !got[0].OK || got[0].Value != 7 {
		t.Errorf("fast task result lost: %+v", got[0])
	}
	if got[1].OK {
		t.Errorf("slow task should be unset: %+v", got[1])
	}
}

func TestGatherWithTimeoutNoTasks(t *testing.T) {
	got := gatherWithTimeout(context.Background(), time.Second, nil)
	if len(got) != 0 {
		t.Fatalf("len = %d", len(got))
	}
}
