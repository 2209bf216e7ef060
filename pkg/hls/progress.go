package hls

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
)

// ProgressTracker keeps thread-safe completion counters for a batch of
// downloads and drives a throttled live display. It must be constructed
// with the batch size; Update is safe to call from concurrent fetches.
type ProgressTracker struct {
	mu        sync.Mutex
	total     int
	completed int
	failed    int
	current   string
	start     time.Time

	bar *progressbar.ProgressBar
}

// NewProgressTracker creates a tracker for total items rendered to out
// (stderr when nil). Redraws are throttled to one per 100ms; Finish forces
// the final render. total must be at least 1.
func NewProgressTracker(total int, out io.Writer) (*ProgressTracker, error) {
	if total < 1 {
		return nil, errors.New("progress total must be at least 1")
	}
	if out == nil {
		out = os.Stderr
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionOnCompletion(func() { fmt.Fprint(out, "\n") }),
	)

	return &ProgressTracker{
		total: total,
		start: time.Now(),
		bar:   bar,
	}, nil
}

// Update records one finished item. completed+failed never exceeds the
// total, and reaches it exactly once, when the last item completes.
func (t *ProgressTracker) Update(success bool) {
	t.mu.Lock()
	if success {
		t.completed++
	} else {
		t.failed++
	}
	failed := t.failed
	t.mu.Unlock()

	if failed > 0 {
		t.bar.Describe(fmt.Sprintf("downloading (%d failed)", failed))
	}
	t.bar.Add(1)
}

// SetCurrentFile surfaces the name of the file being worked on in the
// display. Advisory only.
func (t *ProgressTracker) SetCurrentFile(name string) {
	t.mu.Lock()
	t.current = name
	t.mu.Unlock()

	t.bar.Describe(fmt.Sprintf("downloading %s", name))
}

// Finish renders the final state, bypassing the redraw throttle, and
// terminates the progress line.
func (t *ProgressTracker) Finish() {
	t.bar.Finish()
}

// Completed returns the number of successful items so far.
func (t *ProgressTracker) Completed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.completed
}

// Failed returns the number of failed items so far.
func (t *ProgressTracker) Failed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed
}

// Rate returns items per second since construction, 0 when no time has
// elapsed yet.
func (t *ProgressTracker) Rate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rateLocked()
}

func (t *ProgressTracker) rateLocked() float64 {
	elapsed := time.Since(t.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(t.completed+t.failed) / elapsed
}

// ETA estimates the remaining time from the observed rate. The second
// return value is false while the rate is still 0.
func (t *ProgressTracker) ETA() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rate := t.rateLocked()
	if rate <= 0 {
		return 0, false
	}
	remaining := t.total - t.completed - t.failed
	return time.Duration(float64(remaining) / rate * float64(time.Second)), true
}

// ETAString formats the ETA as mm:ss, or "--:--" when no estimate exists.
func (t *ProgressTracker) ETAString() string {
	eta, ok := t.ETA()
	if !ok {
		return "--:--"
	}
	secs := int(eta.Round(time.Second).Seconds())
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
