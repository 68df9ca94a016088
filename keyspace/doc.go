// Package keyspace derives backend keys from (session, category, item) triples.
//
// # Layout
//
//	<prefix>:<session>:creds
//	<prefix>:<session>:<category>:<item>
//
// Each segment is escaped so it never contains the ':' separator, which makes
// the mapping injective: two distinct triples never share a backend key, and a
// session whose id is a prefix of another session's id never matches that
// session's [Builder.SessionPrefix].
//
// # What this package must NOT do
//
//   - Perform I/O.
//   - Accept free-form category strings past the boundary; callers convert with
//     [ParseCategory].
package keyspace
