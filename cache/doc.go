// Package cache provides the shared query-caching layer of the lint engine.
//
// Rule functions issue many overlapping, idempotent, read-only API calls.
// Wrapping such a call in a Query guarantees that each unique (query name,
// arguments) pair is computed at most once per run, that concurrent callers
// for the same key serialize on a per-key lock while callers for different
// keys never contend, and that results persist on disk within a bounded
// staleness window. Recoverable API failures are cached too, so a broken
// endpoint is not re-queried by every rule that needs it.
//
// All state lives in an explicit Service with an Open/Close lifecycle; there
// are no package-level globals.
package cache
