// Package cache provides the cache stores probed by the cache checks.
//
// Cache is implemented by MemoryCache, a process-local store, and by
// RedisCache. RoundTrip performs the probe itself: a write, read-back and
// delete of a ProbeKey, which is unique per call.
package cache
