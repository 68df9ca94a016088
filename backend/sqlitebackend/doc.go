// Package sqlitebackend implements backend.Backend on a single SQLite file
// through the pure-Go modernc.org/sqlite driver.
//
// Records live in one table keyed by the backend key. Expiry is stored as a
// unix-millisecond deadline; expired rows are invisible to reads and removed
// lazily or by [Backend.Purge].
package sqlitebackend
