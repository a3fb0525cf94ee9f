// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cache provides the short-lived result cache that shields
aggregate reads from repeated datastore queries.

# Semantics

  - Per-entry TTL, checked lazily on Get; there is no background sweep.
  - Bounded size with oldest-insertion eviction (not full LRU - entries
    are cheap to recompute, so insertion recency is enough).
  - Safe for concurrent readers and writers.

# Role

The cache is advisory only. Write paths explicitly invalidate the keys
they affect; TTLs merely bound staleness for keys a write path missed,
such as out-of-band corrections from the consistency sweep. The
instance is constructed once at startup and injected into consumers -
there is no package-level singleton.
*/
package cache
