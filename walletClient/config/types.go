package config

import (
	"time"

	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// StorageBackend selects where the two persisted namespaces live.
type StorageBackend string

const (
	// StorageBackendFile keeps one JSON file per namespace and watches the
	// directory for writes from other processes.
	StorageBackendFile StorageBackend = "file"

	// StorageBackendSQLite keeps namespaces in a SQLite table (single process).
	StorageBackendSQLite StorageBackend = "sqlite"

	// StorageBackendMemory keeps namespaces in memory (tests and demos).
	StorageBackendMemory StorageBackend = "memory"
)

type Config struct {
	// Log Config
	LogLevel   int    `json:"log_level"`   // e.g., 0 = debug, 1 = info, etc.
	LogFormat  string `json:"log_format"`  // "json" or "console"
	LogSampler bool   `json:"log_sampler"` // if true, samples logs (e.g., 1 in 5)

	// Node Config
	NodeHome string `json:"node_home"` // Home directory (default: ~/.pwallet)

	// Session Config
	Bridge                   string `json:"bridge"`                     // WalletConnect bridge URL
	ConnectionTimeoutSeconds int    `json:"connection_timeout_seconds"` // Inactivity timeout (default: 1800)
	JWTExpirationSeconds     int    `json:"jwt_expiration_seconds"`     // Default signJWT expiry (default: 86400)
	Bech32Prefix             string `json:"bech32_prefix"`              // Account address prefix (default: tp)

	// Storage Config
	StorageBackend StorageBackend `json:"storage_backend"` // file, sqlite or memory
	StorageDir     string         `json:"storage_dir"`     // Directory for file/sqlite storage (default: <home>/storage)

	// Query Server Config
	QueryServerPort int `json:"query_server_port"` // Port for HTTP query server (default: 8090)

	// Request Journal Config
	JournalEnabled                bool `json:"journal_enabled"`
	JournalCleanupIntervalSeconds int  `json:"journal_cleanup_interval_seconds"` // default: 3600
	JournalRetentionPeriodSeconds int  `json:"journal_retention_period_seconds"` // default: 604800

	// Default gas price attached to sendCoin / delegate messages
	DefaultGasPrice types.GasPrice `json:"default_gas_price"`
}

// ConnectionTimeout returns the configured inactivity timeout.
func (c *Config) ConnectionTimeout() time.Duration {
	return time.Duration(c.ConnectionTimeoutSeconds) * time.Second
}

// JournalCleanupInterval returns how often old journal records are removed.
func (c *Config) JournalCleanupInterval() time.Duration {
	return time.Duration(c.JournalCleanupIntervalSeconds) * time.Second
}

// JournalRetentionPeriod returns how long journal records are kept.
func (c *Config) JournalRetentionPeriod() time.Duration {
	return time.Duration(c.JournalRetentionPeriodSeconds) * time.Second
}
