// Package events is the typed publish/subscribe surface of the session
// service.
package events

import (
	"sync"

	"github.com/google/uuid"

	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// Name is a closed set of event names.
type Name string

const (
	Connected                   Name = "CONNECTED"
	Disconnect                  Name = "DISCONNECT"
	SendMessageComplete         Name = "SEND_MESSAGE_COMPLETE"
	SendMessageFailed           Name = "SEND_MESSAGE_FAILED"
	SwitchToGroupComplete       Name = "SWITCH_TO_GROUP_COMPLETE"
	SwitchToGroupFailed         Name = "SWITCH_TO_GROUP_FAILED"
	SignJWTComplete             Name = "SIGN_JWT_COMPLETE"
	SignJWTFailed               Name = "SIGN_JWT_FAILED"
	SignHexMessageComplete      Name = "SIGN_HEX_MESSAGE_COMPLETE"
	SignHexMessageFailed        Name = "SIGN_HEX_MESSAGE_FAILED"
	RemovePendingMethodComplete Name = "REMOVE_PENDING_METHOD_COMPLETE"
	RemovePendingMethodFailed   Name = "REMOVE_PENDING_METHOD_FAILED"
)

// All lists every event name.
var All = []Name{
	Connected, Disconnect,
	SendMessageComplete, SendMessageFailed,
	SwitchToGroupComplete, SwitchToGroupFailed,
	SignJWTComplete, SignJWTFailed,
	SignHexMessageComplete, SignHexMessageFailed,
	RemovePendingMethodComplete, RemovePendingMethodFailed,
}

// Valid reports whether n is one of the known names.
func (n Name) Valid() bool {
	for _, known := range All {
		if n == known {
			return true
		}
	}
	return false
}

// Outcome returns the completion or failure event for a pending method name.
func Outcome(method string, failed bool) (Name, bool) {
	pair, ok := outcomes[method]
	if !ok {
		return "", false
	}
	if failed {
		return pair[1], true
	}
	return pair[0], true
}

var outcomes = map[string][2]Name{
	types.PendingSendMessage:         {SendMessageComplete, SendMessageFailed},
	types.PendingSwitchToGroup:       {SwitchToGroupComplete, SwitchToGroupFailed},
	types.PendingSignJWT:             {SignJWTComplete, SignJWTFailed},
	types.PendingSignHexMessage:      {SignHexMessageComplete, SignHexMessageFailed},
	types.PendingRemovePendingMethod: {RemovePendingMethodComplete, RemovePendingMethodFailed},
}

// Payload is what every listener receives. Result is set for method
// outcomes; State is the session state right after the event.
type Payload struct {
	Name   Name          `json:"name"`
	Result *types.Result `json:"result,omitempty"`
	State  types.State   `json:"state"`
	// Message is the disconnect message, if any.
	Message string `json:"message,omitempty"`
}

// Listener receives broadcast payloads.
type Listener func(Payload)

type subscription struct {
	name     Name
	listener Listener
}

// Broadcaster delivers payloads to the listeners of their name, in
// subscription order, on the caller's goroutine.
type Broadcaster struct {
	mu    sync.RWMutex
	subs  map[string]subscription
	order []string
}

// NewBroadcaster returns an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[string]subscription)}
}

// AddListener subscribes l to name and returns an id for RemoveListener.
// Unknown names are rejected with an empty id.
func (b *Broadcaster) AddListener(name Name, l Listener) string {
	if !name.Valid() || l == nil {
		return ""
	}
	id := uuid.NewString()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[id] = subscription{name: name, listener: l}
	b.order = append(b.order, id)
	return id
}

// RemoveListener drops a subscription. It reports whether it existed.
func (b *Broadcaster) RemoveListener(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[id]; !ok {
		return false
	}
	delete(b.subs, id)
	for i, v := range b.order {
		if v == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	return true
}

// Broadcast sends p to every listener of p.Name and returns how many
// received it.
func (b *Broadcaster) Broadcast(p Payload) int {
	b.mu.RLock()
	targets := make([]Listener, 0, len(b.order))
	for _, id := range b.order {
		if s := b.subs[id]; s.name == p.Name {
			targets = append(targets, s.listener)
		}
	}
	b.mu.RUnlock()

	for _, l := range targets {
		l(p)
	}
	return len(targets)
}

// Count returns the number of listeners of name.
func (b *Broadcaster) Count(name Name) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n := 0
	for _, s := range b.subs {
		if s.name == name {
			n++
		}
	}
	return n
}
