// Package blockcache composes package cache with a page-server backend
// (package pageserver) into a write-back block cache: reads are cached and
// coalesced with internal/singleflight, writes are buffered as dirty pages
// and flushed back to the store by WriteBackLoop's worker pool.
package blockcache
