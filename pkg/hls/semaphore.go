package hls

import "context"

// semaphore is a counting semaphore built on a buffered channel. It acts
// as an admission gate: it bounds how many downloads are in flight, not
// how fast they are issued.
type semaphore struct {
	sem chan struct{}
}

// newSemaphore creates a semaphore with n permits.
func newSemaphore(n int) *semaphore {
	return &semaphore{
		sem: make(chan struct{}, n),
	}
}

// acquire blocks until a permit is available or ctx is done. A context
// that is already done never admits, even when a permit is free.
func (s *semaphore) acquire(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release returns a permit to the semaphore.
func (s *semaphore) release() {
	<-s.sem
}
