// Reelpick - Three-Seed Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

/*
Package cache provides a thread-safe, generic LRU cache with TTL support.

The recommendation engine uses it to memoise ranked results for repeated
seed triples. Keys embed the snapshot version, so entries from a previous
snapshot are never served after a rebuild; the engine also clears the cache
on every swap to release their memory.

# Usage Example

	c := cache.NewLRU[[]string](1024, 10*time.Minute)
	c.Add("v3|content|10|a|b|c", titles)
	if titles, ok := c.Get("v3|content|10|a|b|c"); ok {
	    ...
	}

# Thread Safety

All methods are safe for concurrent use. Get takes the write lock because it
reorders the recency list.
*/
package cache
