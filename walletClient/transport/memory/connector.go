// Package memory is a scriptable in-process connector. It behaves like a
// bridge transport (persists its session, restores it on construction,
// emits lifecycle events) but the "wallet" side is driven by the caller.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-wallet-connect/walletClient/storage"
	"github.com/pushchain/push-wallet-connect/walletClient/transport"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// Responder answers wallet requests.
type Responder func(ctx context.Context, req types.Request) (json.RawMessage, error)

type approval struct {
	accounts []json.RawMessage
	peer     *types.PeerMeta
}

// Connector implements transport.Connector in memory. Event handlers run
// synchronously on the goroutine that triggered the event.
type Connector struct {
	mu        sync.RWMutex
	bridge    string
	mirror    *storage.Mirror
	logger    zerolog.Logger
	connected bool
	accounts  []json.RawMessage
	peer      *types.PeerMeta
	uri       string
	opts      transport.SessionOptions
	requests  []types.Request
	respond   Responder
	auto      *approval

	handlersMu sync.RWMutex
	handlers   map[transport.EventName]map[int]transport.Handler
	nextID     int
}

var _ transport.Connector = (*Connector)(nil)

// New creates a connector and restores a connected session from the
// transport namespace if one is persisted.
func New(opts transport.Options) *Connector {
	c := &Connector{
		bridge:   opts.Bridge,
		mirror:   opts.Mirror,
		logger:   opts.Logger.With().Str("component", "memory_connector").Logger(),
		handlers: make(map[transport.EventName]map[int]transport.Handler),
	}
	if c.mirror != nil {
		if ts, ok := c.mirror.ReadTransport(); ok && ts.Connected {
			c.connected = true
			c.accounts = ts.Accounts
			c.peer = ts.PeerMeta
			if ts.Bridge != "" {
				c.bridge = ts.Bridge
			}
			c.logger.Debug().Str("bridge", c.bridge).Msg("restored session from storage")
		}
	}
	return c
}

// Factory returns a transport.Factory; configure, if set, scripts each new
// connector before it is handed out.
func Factory(configure func(*Connector)) transport.Factory {
	return func(opts transport.Options) (transport.Connector, error) {
		c := New(opts)
		if configure != nil {
			configure(c)
		}
		return c, nil
	}
}

// AutoApprove makes CreateSession approve immediately with the given
// accounts, as if the wallet scanned the QR code.
func (c *Connector) AutoApprove(accounts []json.RawMessage, peer *types.PeerMeta) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auto = &approval{accounts: accounts, peer: peer}
	return c
}

// Respond sets the function that answers wallet requests.
func (c *Connector) Respond(fn Responder) *Connector {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.respond = fn
	return c
}

func (c *Connector) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Connector) Accounts() []json.RawMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]json.RawMessage(nil), c.accounts...)
}

func (c *Connector) PeerMeta() *types.PeerMeta {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.peer
}

func (c *Connector) Bridge() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bridge
}

func (c *Connector) URI() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.uri
}

// SessionOptions returns the options passed to the last CreateSession.
func (c *Connector) SessionOptions() transport.SessionOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opts
}

// Requests returns every request sent so far.
func (c *Connector) Requests() []types.Request {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.Request(nil), c.requests...)
}

func (c *Connector) CreateSession(ctx context.Context, opts transport.SessionOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		return nil
	}
	c.opts = opts
	c.uri = fmt.Sprintf("wc:%s@1?bridge=%s&key=%s", uuid.NewString(), url.QueryEscape(c.bridge), uuid.NewString())
	auto := c.auto
	c.mu.Unlock()

	c.logger.Debug().Str("wallet_app_id", opts.WalletAppID).Msg("session created")
	if auto != nil {
		return c.Approve(auto.accounts, auto.peer)
	}
	return nil
}

func (c *Connector) SendCustomRequest(ctx context.Context, req types.Request) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.requests = append(c.requests, req)
	connected := c.connected
	respond := c.respond
	c.mu.Unlock()

	if !connected {
		return nil, fmt.Errorf("session not connected")
	}
	if respond == nil {
		return nil, fmt.Errorf("wallet did not respond to %s", req.Method)
	}
	return respond(ctx, req)
}

// KillSession ends the session from the dApp side.
func (c *Connector) KillSession(ctx context.Context, message string) error {
	c.Drop(message)
	return nil
}

func (c *Connector) On(event transport.EventName, h transport.Handler) func() {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()
	if c.handlers[event] == nil {
		c.handlers[event] = make(map[int]transport.Handler)
	}
	id := c.nextID
	c.nextID++
	c.handlers[event][id] = h
	return func() {
		c.handlersMu.Lock()
		defer c.handlersMu.Unlock()
		delete(c.handlers[event], id)
	}
}

// Subscribed returns how many handlers listen for event.
func (c *Connector) Subscribed(event transport.EventName) int {
	c.handlersMu.RLock()
	defer c.handlersMu.RUnlock()
	return len(c.handlers[event])
}

// Approve completes the handshake from the wallet side.
func (c *Connector) Approve(accounts []json.RawMessage, peer *types.PeerMeta) error {
	c.mu.Lock()
	c.connected = true
	c.accounts = accounts
	c.peer = peer
	ts := storage.TransportSession{Connected: true, Accounts: accounts, Bridge: c.bridge, PeerMeta: peer}
	c.mu.Unlock()

	if err := c.persist(ts); err != nil {
		return err
	}
	c.Emit(transport.EventConnect, nil, transport.Payload{Accounts: accounts, PeerMeta: peer})
	return nil
}

// Update changes the session accounts from the wallet side.
func (c *Connector) Update(accounts []json.RawMessage) error {
	c.mu.Lock()
	c.accounts = accounts
	ts := storage.TransportSession{Connected: c.connected, Accounts: accounts, Bridge: c.bridge, PeerMeta: c.peer}
	c.mu.Unlock()

	if err := c.persist(ts); err != nil {
		return err
	}
	c.Emit(transport.EventSessionUpdate, nil, transport.Payload{Accounts: accounts})
	return nil
}

// Drop ends the session and removes the transport namespace.
func (c *Connector) Drop(message string) {
	c.mu.Lock()
	c.connected = false
	c.accounts = nil
	c.mu.Unlock()

	if c.mirror != nil {
		if err := c.mirror.ClearTransport(); err != nil {
			c.logger.Warn().Err(err).Msg("failed to clear transport session")
		}
	}
	c.Emit(transport.EventDisconnect, nil, transport.Payload{Message: message})
}

// Emit delivers an event to every handler subscribed to it.
func (c *Connector) Emit(event transport.EventName, err error, payload transport.Payload) {
	c.handlersMu.RLock()
	hs := make([]transport.Handler, 0, len(c.handlers[event]))
	for _, h := range c.handlers[event] {
		hs = append(hs, h)
	}
	c.handlersMu.RUnlock()

	for _, h := range hs {
		h(err, payload)
	}
}

func (c *Connector) persist(ts storage.TransportSession) error {
	if c.mirror == nil {
		return nil
	}
	return c.mirror.WriteTransport(ts)
}
