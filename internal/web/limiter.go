package web

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

var errTooManyImports = errors.New("too many concurrent imports")

// importLimiter bounds the number of imports running at once. Each import
// holds a database connection and, with media enabled, an image fetch
// budget, so requests beyond the limit wait up to maxWait for a slot.
type importLimiter struct {
	slots   chan struct{}
	maxWait time.Duration
	active  atomic.Int64
}

func newImportLimiter(maxConcurrent int, maxWait time.Duration) *importLimiter {
	return &importLimiter{
		slots:   make(chan struct{}, max(maxConcurrent, 1)),
		maxWait: maxWait,
	}
}

// acquire takes a slot, or fails with errTooManyImports after maxWait.
// Callers must release every acquired slot.
func (l *importLimiter) acquire(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.slots <- struct{}{}:
		l.active.Add(1)
		return nil
	case <-timer.C:
		return errTooManyImports
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *importLimiter) release() {
	l.active.Add(-1)
	<-l.slots
}

// waitForDrain blocks until no import is running or ctx is done.
func (l *importLimiter) waitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for l.active.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
