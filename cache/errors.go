package cache

import "errors"

// ErrNotAdmitted is returned by Insert when the cache is full and no
// eligible victim exists (every resident entry is pinned or dirty). It is
// never returned for a missing key: Lookup, MarkDirty, MarkClean, Pin,
// Unpin, and Invalidate are silent no-ops on an absent key.
var ErrNotAdmitted = errors.New("cache: not admitted, no eligible victim")

// ErrClosed is returned by operations attempted after Close.
var ErrClosed = errors.New("cache: closed")
