package authstate

import (
	"log/slog"

	"github.com/MrEthical07/authstate/backend"
	"github.com/MrEthical07/authstate/backend/redisbackend"
	"github.com/MrEthical07/authstate/creds"
	"github.com/MrEthical07/authstate/keyspace"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a [Manager].
//
// Builder instances are configured during initialization and consumed by a
// single Build call.
type Builder struct {
	config  Config
	backend backend.Backend
	logger  *slog.Logger

	initCreds       creds.Initializer
	appStateSyncKey func(any) (any, error)

	built bool
}

// New returns a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackend sets the key/value backend every session is stored in.
func (b *Builder) WithBackend(be backend.Backend) *Builder {
	b.backend = be
	return b
}

// WithRedis stores sessions in Redis through client. It accepts a
// *redis.Client, *redis.ClusterClient or *redis.Ring.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	if client == nil {
		b.backend = nil
		return b
	}
	b.backend = redisbackend.New(client)
	return b
}

// WithLogger sets the logger that receives recovered read, delete and
// enumeration failures. The default is slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithCredsInitializer replaces creds.New as the source of credentials for
// sessions that have none stored.
func (b *Builder) WithCredsInitializer(init creds.Initializer) *Builder {
	b.initCreds = init
	return b
}

// WithAppStateSyncKeyDecoder replaces creds.AppStateSyncKeyFromValue as the
// reconstruction hook for app-state-sync-key values.
func (b *Builder) WithAppStateSyncKeyDecoder(decode func(value any) (any, error)) *Builder {
	b.appStateSyncKey = decode
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles batch latency histograms. Requires metrics.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Manager. It performs
// no backend I/O.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)

	if b.backend == nil {
		return nil, ErrBackendRequired
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	initCreds := b.initCreds
	if initCreds == nil {
		initCreds = creds.New
	}

	appStateSyncKey := b.appStateSyncKey
	if appStateSyncKey == nil {
		appStateSyncKey = creds.AppStateSyncKeyFromValue
	}

	m := &Manager{
		config:          cfg,
		backend:         b.backend,
		keys:            keyspace.NewBuilder(cfg.Keyspace.Prefix),
		logger:          logger,
		metrics:         NewMetrics(cfg.Metrics),
		initCreds:       initCreds,
		appStateSyncKey: appStateSyncKey,
	}

	b.built = true
	return m, nil
}
