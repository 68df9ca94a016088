package sqlitebackend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrEthical07/authstate/backend"
	_ "modernc.org/sqlite"
)

// ErrSQLiteUnavailable wraps every driver or database error.
var ErrSQLiteUnavailable = errors.New("sqlite unavailable")

const schema = `
CREATE TABLE IF NOT EXISTS kv_records (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at INTEGER
);
CREATE INDEX IF NOT EXISTS kv_records_expires_at ON kv_records (expires_at);
`

const (
	getQuery = `SELECT value, expires_at FROM kv_records WHERE key = ?1`

	upsertQuery = `
INSERT INTO kv_records (key, value, expires_at) VALUES (?1, ?2, ?3)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`

	deleteQuery = `DELETE FROM kv_records WHERE key = ?1`

	keysQuery = `
SELECT key FROM kv_records
WHERE substr(key, 1, length(?1)) = ?1
  AND (expires_at IS NULL OR expires_at > ?2)`

	purgeQuery = `DELETE FROM kv_records WHERE expires_at IS NOT NULL AND expires_at <= ?1`
)

// Backend is a SQLite-backed [backend.Backend].
type Backend struct {
	db         *sql.DB
	defaultTTL time.Duration
	now        func() time.Time
}

// Option configures a Backend.
type Option func(*Backend)

// WithDefaultTTL sets the retention applied when Set is called with ttl <= 0.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.defaultTTL = ttl
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

// Open opens (creating if needed) the SQLite file at path and applies the schema.
func Open(path string, opts ...Option) (*Backend, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := ":memory:"
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	b := &Backend{db: db, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close releases the database handle.
func (b *Backend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *Backend) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value     string
		expiresAt sql.NullInt64
	)
	err := b.db.QueryRowContext(ctx, getQuery, key).Scan(&value, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrSQLiteUnavailable, err)
	}
	if expiresAt.Valid && expiresAt.Int64 <= toMillis(b.now()) {
		return "", false, nil
	}
	return value, true, nil
}

func (b *Backend) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = b.defaultTTL
	}
	var expiresAt sql.NullInt64
	if ttl > 0 {
		expiresAt = sql.NullInt64{Int64: toMillis(b.now().Add(ttl)), Valid: true}
	}
	if _, err := b.db.ExecContext(ctx, upsertQuery, key, value, expiresAt); err != nil {
		return fmt.Errorf("%w: %v", ErrSQLiteUnavailable, err)
	}
	return nil
}

func (b *Backend) Del(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, deleteQuery, key); err != nil {
		return fmt.Errorf("%w: %v", ErrSQLiteUnavailable, err)
	}
	return nil
}

func (b *Backend) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, keysQuery, prefix, toMillis(b.now()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQLiteUnavailable, err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSQLiteUnavailable, err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSQLiteUnavailable, err)
	}
	return keys, nil
}

// Purge deletes expired rows and returns how many were removed.
func (b *Backend) Purge(ctx context.Context) (int64, error) {
	res, err := b.db.ExecContext(ctx, purgeQuery, toMillis(b.now()))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSQLiteUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSQLiteUnavailable, err)
	}
	return n, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

var _ backend.Backend = (*Backend)(nil)
