package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-wallet-connect/walletClient/config"
	"github.com/pushchain/push-wallet-connect/walletClient/storage"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	viper.Reset()
	home := t.TempDir()

	cfg, err := loadConfig(home)
	require.NoError(t, err)
	assert.Equal(t, home, cfg.NodeHome)
	assert.Equal(t, filepath.Join(home, "storage"), cfg.StorageDir)
	assert.Equal(t, config.StorageBackendFile, cfg.StorageBackend)
	assert.Equal(t, 1800, cfg.ConnectionTimeoutSeconds)
}

func TestEnvironmentOverridesConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PWALLET_PORT", "9999")
	t.Setenv("PWALLET_STORAGE_BACKEND", "memory")

	_, err := execute(t, "init", "--home", home)
	require.NoError(t, err)

	cfg, err := config.Load(home)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.QueryServerPort)
	assert.Equal(t, config.StorageBackendMemory, cfg.StorageBackend)
}

func TestStatusAndClear(t *testing.T) {
	home := t.TempDir()
	_, err := execute(t, "init", "--home", home)
	require.NoError(t, err)

	fb, err := storage.NewFileBackend(filepath.Join(home, "storage"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fb.Close() })
	mirror := storage.NewMirror(fb)
	require.NoError(t, mirror.WriteTransport(storage.TransportSession{
		Connected: true,
		Accounts:  []json.RawMessage{json.RawMessage(`"tp1alice"`)},
		Bridge:    "wss://bridge.example",
	}))
	require.NoError(t, mirror.WriteService(storage.ServiceState{ConnectionTimeout: 60_000}))

	out, err := execute(t, "status", "--home", home)
	require.NoError(t, err)
	var status struct {
		Connected bool                     `json:"connected"`
		Transport storage.TransportSession `json:"transport"`
		Service   storage.ServiceState     `json:"service"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.True(t, status.Connected)
	assert.Equal(t, "wss://bridge.example", status.Transport.Bridge)
	assert.Equal(t, int64(60_000), status.Service.ConnectionTimeout)

	_, err = execute(t, "clear", "--home", home)
	require.NoError(t, err)

	_, ok := mirror.ReadTransport()
	assert.False(t, ok)
	assert.Zero(t, mirror.ReadService().ConnectionTimeout)
}

func TestStartRequiresWalletSecret(t *testing.T) {
	_, err := execute(t, "start", "--home", t.TempDir(), "--storage-backend", "memory")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet-secret")
}

func TestWatchRejectsUnwatchableBackend(t *testing.T) {
	_, err := execute(t, "watch", "--home", t.TempDir(), "--storage-backend", "sqlite")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be watched")
}

func TestVersionCmd(t *testing.T) {
	cmd := versionCmd()
	if cmd == nil {
		t.Fatal("expected non-nil command output")
	}
}
