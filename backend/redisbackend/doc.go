// Package redisbackend implements backend.Backend on Redis through go-redis.
//
// Values are stored with SET (PX when a retention applies); enumeration uses
// SCAN with a glob-escaped MATCH pattern so a prefix containing '*', '?', '['
// or '\' matches literally. Cluster clients are scanned on every master.
//
// # What this package must NOT do
//
//   - Use KEYS; it blocks the server on large keyspaces.
//   - Interpret stored values.
package redisbackend
