package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/MrEthical07/authstate"
	"github.com/MrEthical07/authstate/backend"
	"github.com/MrEthical07/authstate/backend/redisbackend"
	"github.com/MrEthical07/authstate/backend/sqlitebackend"
	"github.com/caarlos0/env/v11"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// backendEnv selects the backend when no flag is given.
type backendEnv struct {
	RedisAddr  string `env:"AUTHSTATE_REDIS_ADDR"`
	SQLitePath string `env:"AUTHSTATE_SQLITE_PATH"`
}

// app is the state shared by every command of one invocation.
type app struct {
	redisAddr  string
	sqlitePath string
	prefix     string
	verbose    bool

	manager *authstate.Manager
	closers []io.Closer
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "authstate",
		Short:        "Inspect and manage persisted session credentials and keys",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVar(&a.redisAddr, "redis", "", "redis address (default $AUTHSTATE_REDIS_ADDR)")
	root.PersistentFlags().StringVar(&a.sqlitePath, "sqlite", "", "sqlite database path (default $AUTHSTATE_SQLITE_PATH)")
	root.PersistentFlags().StringVar(&a.prefix, "prefix", "", "key namespace prefix (default $AUTHSTATE_PREFIX or \"authstate\")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(initCmd(a), showCmd(a), sessionsCmd(a), getCmd(a), clearCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	cfg, err := authstate.ConfigFromEnv()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Keyspace.Prefix = a.prefix
	}

	var envCfg backendEnv
	if err := env.Parse(&envCfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if a.redisAddr == "" {
		a.redisAddr = envCfg.RedisAddr
	}
	if a.sqlitePath == "" {
		a.sqlitePath = envCfg.SQLitePath
	}

	be, err := a.openBackend(logger)
	if err != nil {
		return err
	}

	a.manager, err = authstate.New().
		WithConfig(cfg).
		WithBackend(be).
		WithLogger(logger).
		Build()
	return err
}

func (a *app) openBackend(logger *slog.Logger) (backend.Backend, error) {
	switch {
	case a.redisAddr != "" && a.sqlitePath != "":
		return nil, fmt.Errorf("--redis and --sqlite are mutually exclusive")
	case a.redisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: a.redisAddr})
		a.closers = append(a.closers, client)
		logger.Debug("using redis backend", slog.String("addr", a.redisAddr))
		return redisbackend.New(client), nil
	case a.sqlitePath != "":
		db, err := sqlitebackend.Open(a.sqlitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		logger.Debug("using sqlite backend", slog.String("path", a.sqlitePath))
		return db, nil
	default:
		logger.Warn("no backend configured; using in-process memory, nothing will persist")
		return backend.NewMemoryBackend(), nil
	}
}

func (a *app) close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func requireSession(id string) error {
	if id == "" {
		return fmt.Errorf("session id required (--session)")
	}
	return nil
}
