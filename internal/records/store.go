package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/authstate/backend"
	"github.com/MrEthical07/authstate/codec"
	"github.com/MrEthical07/authstate/keyspace"
	"golang.org/x/sync/errgroup"
)

// DefaultCredsTTL is the credential record retention: two years, refreshed on
// every write.
const DefaultCredsTTL = 63115200 * time.Second

// DefaultMaxConcurrency bounds the number of in-flight backend calls of one
// batch operation.
const DefaultMaxConcurrency = 16

// Reconstructor converts a decoded generic value into a domain object.
type Reconstructor func(value any) (any, error)

// Options configures a Store.
type Options struct {
	SessionID string
	Backend   backend.Backend
	Keys      keyspace.Builder

	// CredsTTL applies to the credential record; zero means DefaultCredsTTL.
	CredsTTL time.Duration
	// KeyTTL applies to key records; zero leaves retention to the backend.
	KeyTTL time.Duration

	// MaxConcurrency bounds batch fan-out; zero means DefaultMaxConcurrency.
	MaxConcurrency int

	Logger   *slog.Logger
	Recorder Recorder

	// AppStateSyncKey is applied to every app-state-sync-key value read.
	AppStateSyncKey Reconstructor
}

// Store reads and writes the records of a single session.
//
// A Store is safe for concurrent use as long as its Backend is.
type Store struct {
	sessionID   string
	backend     backend.Backend
	keys        keyspace.Builder
	credsTTL    time.Duration
	keyTTL      time.Duration
	limit       int
	log         *slog.Logger
	rec         Recorder
	reconstruct Reconstructor
}

// New binds a Store to opts.SessionID.
func New(opts Options) (*Store, error) {
	if opts.SessionID == "" {
		return nil, errors.New("records: session id is required")
	}
	if opts.Backend == nil {
		return nil, errors.New("records: backend is required")
	}
	if opts.CredsTTL < 0 || opts.KeyTTL < 0 {
		return nil, errors.New("records: retention must be >= 0")
	}
	if opts.MaxConcurrency < 0 {
		return nil, errors.New("records: max concurrency must be >= 0")
	}

	s := &Store{
		sessionID:   opts.SessionID,
		backend:     opts.Backend,
		keys:        opts.Keys,
		credsTTL:    opts.CredsTTL,
		keyTTL:      opts.KeyTTL,
		limit:       opts.MaxConcurrency,
		log:         opts.Logger,
		rec:         opts.Recorder,
		reconstruct: opts.AppStateSyncKey,
	}
	if s.credsTTL == 0 {
		s.credsTTL = DefaultCredsTTL
	}
	if s.limit == 0 {
		s.limit = DefaultMaxConcurrency
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.rec == nil {
		s.rec = nopRecorder{}
	}
	s.log = s.log.With(slog.String("session", s.sessionID))
	return s, nil
}

// SessionID returns the bound session id.
func (s *Store) SessionID() string {
	return s.sessionID
}

// Write encodes value and stores it. Credentials are stored with CredsTTL;
// key records with KeyTTL.
func (s *Store) Write(ctx context.Context, category keyspace.Category, itemID string, value any) error {
	if err := checkCategory(category); err != nil {
		s.rec.Inc(EventWriteFailure)
		return &WriteError{Category: category, ItemID: itemID, Err: err}
	}

	text, err := codec.Encode(value)
	if err != nil {
		s.rec.Inc(EventWriteFailure)
		return &WriteError{Category: category, ItemID: itemID, Err: fmt.Errorf("encode: %w", err)}
	}

	if err := s.backend.Set(ctx, s.key(category, itemID), text, s.retention(category)); err != nil {
		s.rec.Inc(EventWriteFailure)
		return &WriteError{Category: category, ItemID: itemID, Err: err}
	}

	s.rec.Inc(EventWrite)
	return nil
}

// Read returns the decoded record and true, or (nil, false) when the record is
// absent, stored as null/empty, or unreadable. Unreadable records are logged.
func (s *Store) Read(ctx context.Context, category keyspace.Category, itemID string) (any, bool) {
	text, ok := s.fetch(ctx, category, itemID)
	if !ok {
		return nil, false
	}

	value, err := codec.Decode(text)
	if err != nil {
		s.rec.Inc(EventDecodeFailure)
		s.logFailure(ctx, "record decode failed", category, itemID, err)
		return nil, false
	}
	if isEmpty(value) {
		s.rec.Inc(EventReadMiss)
		return nil, false
	}

	if category == keyspace.CategoryAppStateSyncKey && s.reconstruct != nil {
		value, err = s.reconstruct(value)
		if err != nil {
			s.rec.Inc(EventDecodeFailure)
			s.logFailure(ctx, "record reconstruction failed", category, itemID, fmt.Errorf("%w: %w", ErrReconstruct, err))
			return nil, false
		}
	}

	s.rec.Inc(EventRead)
	return value, true
}

// ReadInto decodes the record into dst and reports whether it was present and
// readable. dst is left untouched when false is returned, except after a
// decode failure, which may leave it partially filled.
func (s *Store) ReadInto(ctx context.Context, category keyspace.Category, itemID string, dst any) bool {
	text, ok := s.fetch(ctx, category, itemID)
	if !ok {
		return false
	}
	if trimmed := strings.TrimSpace(text); trimmed == "" || trimmed == "null" {
		s.rec.Inc(EventReadMiss)
		return false
	}

	if err := codec.DecodeInto(text, dst); err != nil {
		s.rec.Inc(EventDecodeFailure)
		s.logFailure(ctx, "record decode failed", category, itemID, err)
		return false
	}

	s.rec.Inc(EventRead)
	return true
}

// Delete removes the record. Failures are logged and otherwise ignored.
func (s *Store) Delete(ctx context.Context, category keyspace.Category, itemID string) {
	if err := s.backend.Del(ctx, s.key(category, itemID)); err != nil {
		s.rec.Inc(EventDeleteFailure)
		s.logFailure(ctx, "record delete failed", category, itemID, fmt.Errorf("%w: %w", ErrStoreDelete, err))
		return
	}
	s.rec.Inc(EventDelete)
}

// BatchGet reads every id of category concurrently. The result holds an entry
// for every requested id; absent or unreadable records map to nil.
func (s *Store) BatchGet(ctx context.Context, category keyspace.Category, ids []string) map[string]any {
	start := time.Now()
	defer func() { s.rec.Observe(EventBatchGet, time.Since(start)) }()

	values := make([]any, len(ids))

	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, id := range ids {
		g.Go(func() error {
			if v, ok := s.Read(ctx, category, id); ok {
				values[i] = v
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]any, len(ids))
	for i, id := range ids {
		out[id] = values[i]
	}
	return out
}

// BatchSet applies every entry concurrently: empty values delete the record,
// others write it. All entries run to completion; the returned error joins the
// *WriteError of every failed write and is nil when all writes succeeded.
// Entries that succeeded stay applied.
func (s *Store) BatchSet(ctx context.Context, entries map[keyspace.Category]map[string]any) error {
	start := time.Now()
	defer func() { s.rec.Observe(EventBatchSet, time.Since(start)) }()

	type op struct {
		category keyspace.Category
		itemID   string
		value    any
	}
	ops := make([]op, 0)
	for category, items := range entries {
		for id, value := range items {
			ops = append(ops, op{category: category, itemID: id, value: value})
		}
	}

	errs := make([]error, len(ops))

	var g errgroup.Group
	g.SetLimit(s.limit)
	for i, o := range ops {
		g.Go(func() error {
			if isEmpty(o.value) {
				s.Delete(ctx, o.category, o.itemID)
				return nil
			}
			errs[i] = s.Write(ctx, o.category, o.itemID, o.value)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// ClearSession deletes every record of the bound session, credentials
// included, and returns how many keys were removed. Failed deletes are retried
// once after the first pass; remaining failures and enumeration errors are
// logged, and the session may be left partially cleared.
func (s *Store) ClearSession(ctx context.Context) int {
	keys, err := s.backend.Keys(ctx, s.keys.SessionPrefix(s.sessionID))
	if err != nil {
		s.rec.Inc(EventClearFailure)
		s.log.ErrorContext(ctx, "session clear failed", slog.Any("err", fmt.Errorf("%w: %w", ErrEnumeration, err)))
		return 0
	}

	owned := make([]string, 0, len(keys))
	for _, k := range keys {
		if s.keys.BelongsToSession(k, s.sessionID) {
			owned = append(owned, k)
		}
	}

	var deleted atomic.Int64
	failed := s.deleteKeys(ctx, owned, &deleted)
	if len(failed) > 0 {
		failed = s.deleteKeys(ctx, failed, &deleted)
	}

	for _, k := range failed {
		s.rec.Inc(EventDeleteFailure)
		s.log.ErrorContext(ctx, "session clear left key behind", slog.String("key", k))
	}
	if len(failed) > 0 {
		s.rec.Inc(EventClearFailure)
	} else {
		s.rec.Inc(EventClear)
	}
	return int(deleted.Load())
}

func (s *Store) deleteKeys(ctx context.Context, keys []string, deleted *atomic.Int64) []string {
	var (
		mu     sync.Mutex
		failed []string
		g      errgroup.Group
	)
	g.SetLimit(s.limit)
	for _, k := range keys {
		g.Go(func() error {
			if err := s.backend.Del(ctx, k); err != nil {
				s.log.WarnContext(ctx, "session clear delete failed",
					slog.String("key", k),
					slog.Any("err", fmt.Errorf("%w: %w", ErrStoreDelete, err)),
				)
				mu.Lock()
				failed = append(failed, k)
				mu.Unlock()
				return nil
			}
			deleted.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return failed
}

func (s *Store) fetch(ctx context.Context, category keyspace.Category, itemID string) (string, bool) {
	if err := checkCategory(category); err != nil {
		s.rec.Inc(EventReadFailure)
		s.logFailure(ctx, "record read failed", category, itemID, err)
		return "", false
	}

	text, ok, err := s.backend.Get(ctx, s.key(category, itemID))
	if err != nil {
		s.rec.Inc(EventReadFailure)
		s.logFailure(ctx, "record read failed", category, itemID, fmt.Errorf("%w: %w", ErrStoreRead, err))
		return "", false
	}
	if !ok {
		s.rec.Inc(EventReadMiss)
		return "", false
	}
	return text, true
}

func (s *Store) key(category keyspace.Category, itemID string) string {
	return s.keys.Key(s.sessionID, category, itemID)
}

func (s *Store) retention(category keyspace.Category) time.Duration {
	if category == keyspace.CategoryCreds {
		return s.credsTTL
	}
	return s.keyTTL
}

func (s *Store) logFailure(ctx context.Context, msg string, category keyspace.Category, itemID string, err error) {
	s.log.ErrorContext(ctx, msg,
		slog.String("category", string(category)),
		slog.String("item", itemID),
		slog.Any("err", err),
	)
}

func checkCategory(category keyspace.Category) error {
	if category == keyspace.CategoryCreds || category.Valid() {
		return nil
	}
	return fmt.Errorf("%w: %q", keyspace.ErrUnknownCategory, string(category))
}

// isEmpty reports whether v signals "no record": nil, a nil pointer, map,
// slice or interface, or a zero-length string, byte slice, map or slice.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	case reflect.Map, reflect.Slice, reflect.String:
		return rv.Len() == 0
	default:
		return false
	}
}
