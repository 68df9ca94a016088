// Package backend defines the minimal key/value contract the record store
// persists into, and an in-process implementation of it.
//
// # Contract
//
// A [Backend] stores string values under string keys with an optional
// time-to-live, and can enumerate keys by prefix. Any conforming store can be
// plugged in without changes to the layers above it; see the redisbackend and
// sqlitebackend sub-packages.
//
// # What this package must NOT do
//
//   - Interpret keys or values.
//   - Import record, codec, or keyspace packages.
package backend
