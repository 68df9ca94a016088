// Package internal contains helpers that are intentionally private to authstate.
//
// # Sub-packages
//
//   - records: per-session record store (write, read, batch, clear)
//
// # What this package must NOT do
//
//   - Export types that appear in the public authstate API, other than
//     through aliases declared in the root package.
//   - Be imported by any package outside the authstate module.
package internal
