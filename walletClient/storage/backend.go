// Package storage mirrors the two persisted namespaces the session client
// depends on: the transport session blob ("walletconnect") written by the
// transport, and the service bookkeeping blob ("walletconnect-js") written
// by the session service.
//
// Backends store opaque JSON strings by key. Backends that can observe
// writes made by other processes (or other tabs of a shared memory store)
// also implement Watcher.
package storage

import (
	"fmt"
	"strings"
)

const (
	// KeyTransport is the namespace owned by the transport library.
	KeyTransport = "walletconnect"
	// KeyService is the namespace owned by the session service.
	KeyService = "walletconnect-js"
)

// Backend is string keyed storage of serialized JSON blobs.
type Backend interface {
	// Get returns the stored value and whether it exists.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// Event reports a write to a key made by someone other than the receiver.
// An empty OldValue or NewValue means the key was absent.
type Event struct {
	Key      string
	OldValue string
	NewValue string
}

// Watcher delivers Events for writes made outside the receiving handle, in
// the order they were observed.
type Watcher interface {
	Watch(handler func(Event)) (stop func())
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("storage key is empty")
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}
