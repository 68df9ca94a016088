// Package codec converts structured record values to and from the textual form
// persisted in string-oriented key/value backends.
//
// # Wire format
//
// Values are JSON. Binary payloads are written as a tagged object
//
//	{"type":"Buffer","data":"<base64>"}
//
// so [Decode] can restore them to []byte instead of leaving them as text. The
// reviver also accepts the {"buffer":true,"value":...} spelling and byte arrays
// expressed as JSON number lists, which older records contain.
//
// # Architecture boundaries
//
// This package owns serialization only. It does NOT know about categories,
// sessions, or backend keys; per-category reconstruction is layered on top by
// the record store.
//
// # What this package must NOT do
//
//   - Import any other authstate package.
//   - Log. Malformed input is reported as [*DecodeError] to the caller.
package codec
