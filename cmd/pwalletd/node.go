package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/pushchain/push-wallet-connect/walletClient/config"
	"github.com/pushchain/push-wallet-connect/walletClient/db"
	"github.com/pushchain/push-wallet-connect/walletClient/journal"
	"github.com/pushchain/push-wallet-connect/walletClient/storage"
)

const (
	flagPort           = "port"
	flagBridge         = "bridge"
	flagStorageBackend = "storage-backend"
	flagStorageDir     = "storage-dir"
	flagLogLevel       = "log-level"
	flagLogFormat      = "log-format"
	flagJournal        = "journal"
)

// loadConfig reads <home>/config/pwallet_config.json, falling back to the
// embedded defaults when the file does not exist, then applies flag and
// environment overrides.
func loadConfig(home string) (config.Config, error) {
	cfg, err := config.Load(home)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, err
		}
		def, derr := config.LoadDefaultConfig()
		if derr != nil {
			return config.Config{}, derr
		}
		cfg = *def
		cfg.NodeHome = home
	}
	applyOverrides(&cfg)
	if err := config.Validate(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config) {
	if viper.IsSet(flagPort) {
		cfg.QueryServerPort = viper.GetInt(flagPort)
	}
	if viper.IsSet(flagBridge) {
		cfg.Bridge = viper.GetString(flagBridge)
	}
	if viper.IsSet(flagStorageBackend) {
		cfg.StorageBackend = config.StorageBackend(viper.GetString(flagStorageBackend))
	}
	if viper.IsSet(flagStorageDir) {
		cfg.StorageDir = viper.GetString(flagStorageDir)
	}
	if viper.IsSet(flagLogLevel) {
		cfg.LogLevel = viper.GetInt(flagLogLevel)
	}
	if viper.IsSet(flagLogFormat) {
		cfg.LogFormat = viper.GetString(flagLogFormat)
	}
	if viper.IsSet(flagJournal) {
		cfg.JournalEnabled = viper.GetBool(flagJournal)
	}
}

// node holds the storage resources shared by the commands.
type node struct {
	cfg      config.Config
	logger   zerolog.Logger
	mirror   *storage.Mirror
	database *db.DB
	closers  []func() error
}

func openNode(cfg config.Config, logger zerolog.Logger) (*node, error) {
	n := &node{cfg: cfg, logger: logger}

	var backend storage.Backend
	switch cfg.StorageBackend {
	case config.StorageBackendFile:
		fb, err := storage.NewFileBackend(cfg.StorageDir, logger)
		if err != nil {
			return nil, err
		}
		n.closers = append(n.closers, fb.Close)
		backend = fb
	case config.StorageBackendSQLite:
		if err := n.openDatabase(); err != nil {
			return nil, err
		}
		backend = storage.NewSQLBackend(n.database.Client())
	case config.StorageBackendMemory:
		tab := storage.NewMemoryStore().Tab()
		n.closers = append(n.closers, func() error {
			tab.Close()
			return nil
		})
		backend = tab
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	n.mirror = storage.NewMirror(backend)
	return n, nil
}

func (n *node) openDatabase() error {
	if n.database != nil {
		return nil
	}
	var (
		database *db.DB
		err      error
	)
	if n.cfg.StorageBackend == config.StorageBackendMemory {
		database, err = db.OpenInMemoryDB(true)
	} else {
		database, err = db.OpenFileDB(n.cfg.StorageDir, db.DefaultFileName, true)
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.database = database
	n.closers = append(n.closers, database.Close)
	return nil
}

// openJournal returns nil when the journal is disabled.
func (n *node) openJournal() (*journal.Store, error) {
	if !n.cfg.JournalEnabled {
		return nil, nil
	}
	if err := n.openDatabase(); err != nil {
		return nil, err
	}
	return journal.NewStore(n.database.Client(), n.logger), nil
}

func (n *node) close() {
	for i := len(n.closers) - 1; i >= 0; i-- {
		if err := n.closers[i](); err != nil {
			n.logger.Warn().Err(err).Msg("failed to close storage")
		}
	}
}
