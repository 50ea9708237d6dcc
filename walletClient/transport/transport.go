// Package transport defines the session transport capability the wallet
// client is built on. Implementations own the bridge protocol and persist
// their session in the transport storage namespace.
package transport

//go:generate mockgen -destination=mocks/connector.go -package=mocks github.com/pushchain/push-wallet-connect/walletClient/transport Connector

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/pushchain/push-wallet-connect/walletClient/storage"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// EventName is a connector lifecycle event.
type EventName string

const (
	EventConnect       EventName = "connect"
	EventDisconnect    EventName = "disconnect"
	EventSessionUpdate EventName = "session_update"
)

// Payload is delivered with lifecycle events.
type Payload struct {
	Accounts []json.RawMessage `json:"accounts,omitempty"`
	PeerMeta *types.PeerMeta   `json:"peerMeta,omitempty"`
	// Message is the disconnect reason, if any.
	Message string `json:"message,omitempty"`
}

// Handler receives lifecycle events. A non-nil err means the transport
// failed to deliver the event.
type Handler func(err error, payload Payload)

// SessionOptions are forwarded to the wallet when a session is created.
type SessionOptions struct {
	WalletAppID       string `json:"walletAppId,omitempty"`
	IndividualAddress string `json:"individualAddress,omitempty"`
	GroupAddress      string `json:"groupAddress,omitempty"`
	ProhibitGroups    bool   `json:"prohibitGroups,omitempty"`
	JWTExpiration     int64  `json:"jwtExpiration,omitempty"`
}

// Connector is a live transport session handle.
type Connector interface {
	Connected() bool
	Accounts() []json.RawMessage
	PeerMeta() *types.PeerMeta
	Bridge() string
	// URI is the pairing URI shown as a QR code while waiting for a wallet.
	URI() string
	CreateSession(ctx context.Context, opts SessionOptions) error
	SendCustomRequest(ctx context.Context, req types.Request) (json.RawMessage, error)
	KillSession(ctx context.Context, message string) error
	// On subscribes h to event and returns a function that removes it.
	On(event EventName, h Handler) func()
}

// Options configure a new connector.
type Options struct {
	Bridge string
	Mirror *storage.Mirror
	Logger zerolog.Logger
}

// Factory creates connectors. The session service calls it on every
// connect and when restoring a session found in storage.
type Factory func(opts Options) (Connector, error)
