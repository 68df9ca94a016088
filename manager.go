package authstate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/MrEthical07/authstate/backend"
	"github.com/MrEthical07/authstate/creds"
	"github.com/MrEthical07/authstate/internal/records"
	"github.com/MrEthical07/authstate/keyspace"
)

// Manager opens per-session [State] over one shared backend.
//
// Manager methods are safe for concurrent use after [Builder.Build].
type Manager struct {
	config  Config
	backend backend.Backend
	keys    keyspace.Builder
	logger  *slog.Logger
	metrics *Metrics

	initCreds       creds.Initializer
	appStateSyncKey records.Reconstructor
}

// Open binds a State to sessionID. Stored credentials are loaded; when none
// are stored, or the stored record is unreadable, the credential initializer
// supplies fresh ones. Fresh credentials are not persisted until
// State.SaveCreds or State.Flush is called.
func (m *Manager) Open(ctx context.Context, sessionID string) (*State, error) {
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}

	store, err := records.New(records.Options{
		SessionID:       sessionID,
		Backend:         m.backend,
		Keys:            m.keys,
		CredsTTL:        m.config.Retention.CredsTTL,
		KeyTTL:          m.config.Retention.KeyTTL,
		MaxConcurrency:  m.config.Batch.MaxConcurrency,
		Logger:          m.logger,
		Recorder:        storeRecorder{m: m.metrics},
		AppStateSyncKey: m.appStateSyncKey,
	})
	if err != nil {
		return nil, err
	}

	c := new(creds.Credentials)
	if !store.ReadInto(ctx, keyspace.CategoryCreds, "", c) {
		c, err = m.initCreds()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCredsInit, err)
		}
		if c == nil {
			return nil, fmt.Errorf("%w: initializer returned nil credentials", ErrCredsInit)
		}
		m.metrics.Inc(MetricCredsInit)
	}

	s := &State{
		Creds:   c,
		store:   store,
		metrics: m.metrics,
	}
	s.keys = &KeyStore{store: store}
	return s, nil
}

// Sessions lists the ids of every session that has a credential record,
// sorted. It needs a non-empty keyspace prefix: without one any foreign
// "x:creds" key in the backend would be listed as a session.
func (m *Manager) Sessions(ctx context.Context) ([]string, error) {
	if m.config.Keyspace.Prefix == "" {
		return nil, ErrPrefixRequired
	}
	keys, err := m.backend.Keys(ctx, m.keys.RootPrefix())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEnumeration, err)
	}

	var out []string
	for _, k := range keys {
		addr, ok := m.keys.Parse(k)
		if !ok || !addr.IsCreds() {
			continue
		}
		out = append(out, addr.SessionID)
	}
	sort.Strings(out)
	return out, nil
}

// Config returns a copy of the configuration the Manager was built with.
func (m *Manager) Config() Config {
	return cloneConfig(m.config)
}

// Metrics returns the live metrics. Exporters read it through Snapshot.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// MetricsSnapshot copies the current counters and histograms.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}
