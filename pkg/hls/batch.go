package hls

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// SegmentFileName returns the destination filename for the segment at the
// given playlist index. The mapping is purely positional, so the chunk
// list written later in playlist order always refers to the right file no
// matter in which order the downloads finished.
func SegmentFileName(prefix string, index int) string {
	return fmt.Sprintf("%s-file%d.ts", prefix, index+1)
}

// FetchAll downloads every URL into outputDir, running at most
// MaxConcurrent fetches at a time. Jobs are independent: one job failing
// never cancels another, and the call returns only once every job has
// either succeeded or exhausted its retries. The URL at index i is written
// to SegmentFileName(prefix, i).
//
// Canceling ctx fails jobs still waiting for an admission slot and aborts
// in-flight requests; FetchAll still waits for all goroutines and returns
// the usual accounting.
func (d *Downloader) FetchAll(ctx context.Context, urls []string, outputDir, prefix string) int {
	if len(urls) == 0 {
		return 0
	}

	tracker, err := NewProgressTracker(len(urls), d.progressOut)
	if err != nil {
		d.log.WithError(err).Error("progress tracker unavailable")
		return 0
	}

	sem := newSemaphore(max(1, d.cfg.MaxConcurrent))
	results := make([]bool, len(urls))
	var wg sync.WaitGroup

	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()

			if err := sem.acquire(ctx); err != nil {
				tracker.Update(false)
				return
			}
			defer sem.release()

			tracker.SetCurrentFile(FilenameOf(u))
			dest := filepath.Join(outputDir, SegmentFileName(prefix, i))
			ok := d.fetchOne(ctx, u, dest)
			results[i] = ok
			tracker.Update(ok)
		}(i, u)
	}

	wg.Wait()
	tracker.Finish()

	success := 0
	for _, ok := range results {
		if ok {
			success++
		}
	}

	if failed := len(urls) - success; failed > 0 {
		d.log.Warnf("download completed: %d/%d successful, %d failed", success, len(urls), failed)
	} else {
		d.log.Infof("all %d files downloaded successfully", success)
	}

	return success
}
