// Package records implements the per-session record store on top of a
// backend.Backend: single-record write/read/delete, concurrent batch get and
// set, and session-wide clearing.
//
// # Failure policy
//
// Writes fail fast: a rejected backend write or an unencodable value is
// returned to the caller as a [*WriteError] wrapping [ErrStoreWrite]. Reads,
// deletes and session enumeration are best-effort: failures are logged and
// counted, a failed read reports the record as absent and a failed delete
// reports success. The asymmetry is part of the contract; do not unify it.
//
// # Architecture boundaries
//
// This package owns retention selection (credentials outlive key records),
// empty-value deletion semantics and batch fan-out. It does NOT own the
// in-memory credential object or the public key-store surface; those belong
// to the root package.
//
// # What this package must NOT do
//
//   - Import the root authstate package.
//   - Surface read, delete or enumeration errors to callers.
//   - Abort sibling batch entries when one entry fails.
package records
