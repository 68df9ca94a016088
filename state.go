package authstate

import (
	"context"
	"sync/atomic"

	"github.com/MrEthical07/authstate/creds"
	"github.com/MrEthical07/authstate/internal/records"
	"github.com/MrEthical07/authstate/keyspace"
)

// State is the persisted authentication state of one session.
//
// Creds is owned by the caller: it may be mutated in place, and changes are
// persisted only by SaveCreds, or by Flush after MarkDirty. State does not
// lock Creds; callers must not mutate it while a save is in flight.
type State struct {
	Creds *creds.Credentials

	store   *records.Store
	keys    *KeyStore
	metrics *Metrics
	dirty   atomic.Bool
}

// SessionID returns the session the State is bound to.
func (s *State) SessionID() string {
	return s.store.SessionID()
}

// Keys returns the key-record store of this session.
func (s *State) Keys() *KeyStore {
	return s.keys
}

// SaveCreds writes the current Creds with the credential retention. It
// performs exactly one backend write and clears the dirty mark on success.
func (s *State) SaveCreds(ctx context.Context) error {
	wasDirty := s.dirty.Swap(false)
	if err := s.store.Write(ctx, keyspace.CategoryCreds, "", s.Creds); err != nil {
		if wasDirty {
			s.dirty.Store(true)
		}
		return err
	}
	s.metrics.Inc(MetricCredsSave)
	return nil
}

// MarkDirty records that Creds changed and should be written by Flush.
func (s *State) MarkDirty() {
	s.dirty.Store(true)
}

// Dirty reports whether Creds changed since the last successful save.
func (s *State) Dirty() bool {
	return s.dirty.Load()
}

// Flush writes Creds if they were marked dirty and is a no-op otherwise. A
// failed write leaves the mark set so a later Flush retries.
func (s *State) Flush(ctx context.Context) error {
	if !s.dirty.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.store.Write(ctx, keyspace.CategoryCreds, "", s.Creds); err != nil {
		s.dirty.Store(true)
		return err
	}
	s.metrics.Inc(MetricCredsSave)
	return nil
}

// ClearState deletes every record of the session, credentials included, and
// returns the number of deleted keys. Failures are logged, never returned;
// the in-memory Creds are left untouched.
func (s *State) ClearState(ctx context.Context) int {
	return s.store.ClearSession(ctx)
}
