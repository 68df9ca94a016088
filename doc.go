// Package authstate persists the authentication state of messaging sessions:
// one long-lived credential record and many typed key records per session,
// stored in a pluggable key/value backend that many sessions can share.
//
// A [Manager] is built once through [Builder.Build] and opens a [State] per
// session with [Manager.Open]. State exposes the in-memory credentials for
// in-place mutation, persists them with [State.SaveCreds] (or [State.Flush]
// after [State.MarkDirty]) and serves key records through [KeyStore].
// Manager and KeyStore methods are safe to call from multiple goroutines.
//
// # Architecture boundaries
//
// authstate is the public surface. It exposes [Builder], [Manager], [State],
// [KeyStore], [Config] and [Metrics]. The wire codec lives in codec, key
// layout in keyspace, backends under backend/, credential types in creds, and
// the per-session record store under internal/records.
//
// # Failure policy
//
// Writes surface errors wrapping [ErrStoreWrite]. Reads, deletes and session
// clears are best-effort: failures are logged through the configured
// *slog.Logger and reported as absence or ignored.
//
// # What this package must NOT do
//
//   - Expose backend clients or encoding details in its public API.
//   - Perform I/O outside of Manager, State and KeyStore methods
//     (construction via Builder is allocation-only until Open).
//   - Lock or copy State.Creds; the caller owns it.
package authstate
