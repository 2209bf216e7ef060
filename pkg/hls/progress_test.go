package hls

import (
	"bytes"
	"io"
	"sync"
	"testing"
)

func TestNewProgressTracker_RejectsNonPositiveTotal(t *testing.T) {
	for _, total := range []int{0, -1} {
		if _, err := NewProgressTracker(total, io.Discard); err == nil {
			t.Fatalf("expected error for total %d", total)
		}
	}
}

func TestProgressTracker_CountersUnderConcurrentUpdates(t *testing.T) {
	const completed = 70
	const failed = 30

	tracker, err := NewProgressTracker(completed+failed, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < completed+failed; i++ {
		wg.Add(1)
		go func(success bool) {
			defer wg.Done()
			tracker.Update(success)
		}(i < completed)
	}
	wg.Wait()
	tracker.Finish()

	if got := tracker.Completed(); got != completed {
		t.Fatalf("completed = %d, want %d", got, completed)
	}
	if got := tracker.Failed(); got != failed {
		t.Fatalf("failed = %d, want %d", got, failed)
	}
	if tracker.Completed()+tracker.Failed() != completed+failed {
		t.Fatal("completed+failed must equal total once the batch is done")
	}
}

func TestProgressTracker_ETAStringWithoutRate(t *testing.T) {
	tracker, err := NewProgressTracker(10, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	// No updates yet, so the rate is 0 and no estimate exists.
	if got := tracker.ETAString(); got != "--:--" {
		t.Fatalf("ETAString = %q, want --:--", got)
	}
}

func TestProgressTracker_RateAndETAAfterUpdates(t *testing.T) {
	tracker, err := NewProgressTracker(4, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	tracker.Update(true)
	tracker.Update(false)

	if rate := tracker.Rate(); rate <= 0 {
		t.Fatalf("expected positive rate, got %f", rate)
	}
	if _, ok := tracker.ETA(); !ok {
		t.Fatal("expected a finite ETA once items have completed")
	}
}

func TestProgressTracker_FinishRenders(t *testing.T) {
	var buf bytes.Buffer
	tracker, err := NewProgressTracker(2, &buf)
	if err != nil {
		t.Fatal(err)
	}

	tracker.SetCurrentFile("seg1.ts")
	tracker.Update(true)
	tracker.Update(true)
	tracker.Finish()

	if buf.Len() == 0 {
		t.Fatal("expected the final render to produce output")
	}
}
