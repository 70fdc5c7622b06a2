package blockcache

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// WriteBackLoop periodically flushes a BlockCache's dirty pages to its
// store using a bounded pool of concurrent workers — the caller-side
// flusher a write-back cache is expected to run for itself, built with
// golang.org/x/sync/errgroup.
type WriteBackLoop struct {
	bc       *BlockCache
	interval time.Duration
	workers  int
}

// NewWriteBackLoop periodically flushes bc's dirty pages every interval,
// using up to workers concurrent goroutines per flush pass.
func NewWriteBackLoop(bc *BlockCache, interval time.Duration, workers int) *WriteBackLoop {
	if workers < 1 {
		workers = 1
	}
	return &WriteBackLoop{bc: bc, interval: interval, workers: workers}
}

// Run flushes on every tick until ctx is canceled or a flush pass returns a
// store error, in which case Run returns that error.
func (l *WriteBackLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := l.flushOnce(ctx); err != nil {
				return err
			}
		}
	}
}

func (l *WriteBackLoop) flushOnce(ctx context.Context) error {
	dirty := l.bc.c.GetDirty(0)
	if len(dirty) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for _, page := range dirty {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			return l.bc.flushPage(page)
		})
	}
	return g.Wait()
}
