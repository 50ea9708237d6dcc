package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	configSubdir   = "config"
	configFileName = "pwallet_config.json"
	storageSubdir  = "storage"

	DefaultBridge = "wss://www.figure.tech/service-wallet-connect-bridge/ws/external"
)

//go:embed default_config.json
var defaultConfigJSON []byte

func validateConfig(cfg *Config) error {
	// Validate log level
	if cfg.LogLevel < 0 || cfg.LogLevel > 5 {
		return fmt.Errorf("log level must be between 0 and 5")
	}

	// Validate log format
	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		return fmt.Errorf("log format must be 'json' or 'console'")
	}

	// Set defaults for session config
	if cfg.Bridge == "" {
		cfg.Bridge = DefaultBridge
	}
	if cfg.ConnectionTimeoutSeconds == 0 {
		cfg.ConnectionTimeoutSeconds = 1800
	}
	if cfg.ConnectionTimeoutSeconds < 0 {
		return fmt.Errorf("connection timeout must be positive")
	}
	if cfg.JWTExpirationSeconds == 0 {
		cfg.JWTExpirationSeconds = 86400
	}
	if cfg.Bech32Prefix == "" {
		cfg.Bech32Prefix = "tp"
	}

	// Set defaults for storage
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = StorageBackendFile
	}
	switch cfg.StorageBackend {
	case StorageBackendFile, StorageBackendSQLite, StorageBackendMemory:
	default:
		return fmt.Errorf("storage backend must be 'file', 'sqlite' or 'memory'")
	}
	if cfg.StorageDir == "" && cfg.NodeHome != "" {
		cfg.StorageDir = filepath.Join(cfg.NodeHome, storageSubdir)
	}
	if cfg.StorageDir == "" && cfg.StorageBackend != StorageBackendMemory {
		return fmt.Errorf("storage dir is required for the %s backend", cfg.StorageBackend)
	}

	// Set defaults for query server
	if cfg.QueryServerPort == 0 {
		cfg.QueryServerPort = 8090
	}

	// Set defaults for journal cleanup
	if cfg.JournalCleanupIntervalSeconds == 0 {
		cfg.JournalCleanupIntervalSeconds = 3600
	}
	if cfg.JournalRetentionPeriodSeconds == 0 {
		cfg.JournalRetentionPeriodSeconds = 604800
	}

	if cfg.DefaultGasPrice.GasPriceDenom == "" {
		cfg.DefaultGasPrice.GasPriceDenom = "nhash"
	}
	if cfg.DefaultGasPrice.GasPrice == 0 {
		cfg.DefaultGasPrice.GasPrice = 19050
	}

	return nil
}

// Validate applies defaults to cfg and reports invalid values.
func Validate(cfg *Config) error {
	return validateConfig(cfg)
}

// Save writes the given config to <basePath>/config/pwallet_config.json.
func Save(cfg *Config, basePath string) error {
	if err := validateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	configDir := filepath.Join(basePath, configSubdir)
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configDir, configFileName)
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Load reads and returns the config from <basePath>/config/pwallet_config.json.
func Load(basePath string) (Config, error) {
	configFile := filepath.Join(basePath, configSubdir, configFileName)
	data, err := os.ReadFile(filepath.Clean(configFile))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.NodeHome == "" {
		cfg.NodeHome = basePath
	}
	if err := validateConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads the default configuration from embedded JSON
func LoadDefaultConfig() (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(defaultConfigJSON, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", err)
	}
	return &cfg, nil
}
