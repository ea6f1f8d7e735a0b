// Package mirrorfetch implements a concurrent HTTP file fetcher: given
// one or more mirror URLs and a destination path, it produces a
// byte-exact local file, optionally by downloading disjoint byte ranges
// in parallel and concatenating them, with conditional-get caching by
// timestamp, resume of aborted transfers, per-chunk timeouts, bounded
// concurrency, cooperative cancellation, event telemetry, and bounded
// retries.
//
// A Fetcher is built once via New or NewWithLoggers, configured with its
// Set* methods, and then shared by reference across every source it
// fetches — concurrently, if the caller chooses. Use Pipeline to turn a
// stream of sources into a stream of fetch results.
//
// The sibling package "checksum" verifies a completed file against a
// declared MD5 or SHA-256 digest; it has no dependency on the fetch
// engine and can be used standalone.
package mirrorfetch
