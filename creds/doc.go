// Package creds defines the per-session credential record and the app-state
// sync key structure, together with their default initializer and
// reconstruction hook.
//
// # Architecture boundaries
//
// The record store treats these as opaque values: it calls [New] when a
// session has no stored credentials, and [AppStateSyncKeyFromValue] on
// app-state-sync-key reads. Callers may replace either through the facade's
// builder.
//
// # What this package must NOT do
//
//   - Perform I/O or know about backend keys.
//   - Persist anything itself; the runtime calls SaveCreds.
package creds
