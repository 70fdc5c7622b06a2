package blockcache

import (
	"context"
	"sync"

	"github.com/IvanBrykalov/blockcache/cache"
	"github.com/IvanBrykalov/blockcache/internal/singleflight"
)

// Store is the backend a BlockCache reads from and writes back to. A
// *pageserver.Client satisfies this directly.
type Store interface {
	Read(offset uint64, length uint32) ([]byte, error)
	Write(offset uint64, data []byte) error
}

// BlockCache is a read-through, write-back cache of fixed-size pages keyed
// by page number. Page number n covers store bytes [n*PageSize,
// (n+1)*PageSize).
type BlockCache struct {
	c        cache.Cache[uint64, []byte]
	store    Store
	pageSize uint32
	loads    singleflight.Group[uint64, []byte]

	// flushMu serializes Put against flushPage so a write landing between
	// flushPage's read and its MarkClean can never be marked clean without
	// actually reaching the store.
	flushMu sync.Mutex
}

// New wraps c (already configured with a capacity and policy) around store.
func New(c cache.Cache[uint64, []byte], store Store, pageSize uint32) *BlockCache {
	return &BlockCache{c: c, store: store, pageSize: pageSize}
}

// Get returns page's bytes, fetching from the store on a cache miss.
// Concurrent Gets for the same page that miss together share one
// store.Read call.
func (b *BlockCache) Get(ctx context.Context, page uint64) ([]byte, error) {
	if v, ok := b.c.Lookup(page); ok {
		return v, nil
	}
	data, err := b.loads.Do(ctx, page, func() ([]byte, error) {
		if v, ok := b.c.Lookup(page); ok {
			return v, nil // another goroutine admitted it since the Lookup above
		}
		return b.store.Read(page*uint64(b.pageSize), b.pageSize)
	})
	if err != nil {
		return nil, err
	}
	// Insert, not Upsert: if a concurrent Put admitted this page (possibly
	// dirty) while the store read was in flight, Insert leaves it alone
	// instead of clobbering it with the now-stale bytes just read.
	if _, err := b.c.Insert(page, data); err != nil {
		// Admission failure (cache full of pinned/dirty pages) does not
		// invalidate the read: the caller still gets the data, it just
		// won't be cached for next time.
		return data, nil
	}
	if v, ok := b.c.Lookup(page); ok {
		return v, nil
	}
	return data, nil
}

// Put buffers a write: page's bytes are updated in the cache and marked
// dirty, but not sent to the store until a WriteBackLoop flush (or Flush).
func (b *BlockCache) Put(page uint64, data []byte) error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	if err := b.c.Upsert(page, data); err != nil {
		return err
	}
	b.c.MarkDirty(page)
	return nil
}

// flushPage writes page's current value to the store and marks it clean.
// Locking against Put closes the gap between reading the value and marking
// it clean: without it, a Put landing in that gap would be lost, cached as
// clean data that was never actually written back.
func (b *BlockCache) flushPage(page uint64) error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	v, ok := b.c.Lookup(page)
	if !ok {
		return nil // evicted or invalidated since GetDirty
	}
	if err := b.store.Write(page*uint64(b.pageSize), v); err != nil {
		return err
	}
	b.c.MarkClean(page)
	return nil
}

// Flush writes every currently dirty page to the store directly, bypassing
// any running WriteBackLoop. Intended for an explicit FLUSH request or
// shutdown path.
func (b *BlockCache) Flush() error {
	for _, page := range b.c.GetDirty(0) {
		if err := b.flushPage(page); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the underlying cache's counters.
func (b *BlockCache) Stats() cache.Stats { return b.c.Stats() }

// Close closes the underlying cache.
func (b *BlockCache) Close() error { return b.c.Close() }
