package storage

import (
	"encoding/json"

	"github.com/spf13/cast"

	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// TransportSession is the transport-owned namespace. The service only reads
// it, apart from removing it on disconnect.
type TransportSession struct {
	Connected bool              `json:"connected"`
	Accounts  []json.RawMessage `json:"accounts"`
	Bridge    string            `json:"bridge"`
	PeerMeta  *types.PeerMeta   `json:"peerMeta"`
	// Session is the transport's opaque resume data.
	Session json.RawMessage `json:"session,omitempty"`
}

// ServiceState is the service-owned namespace.
type ServiceState struct {
	ConnectionEXP     int64  `json:"connectionEXP,omitempty"`
	ConnectionEST     int64  `json:"connectionEST,omitempty"`
	ConnectionTimeout int64  `json:"connectionTimeout,omitempty"`
	SignedJWT         string `json:"signedJWT,omitempty"`
	WalletAppID       string `json:"walletAppId,omitempty"`
	IframeParentID    string `json:"iframeParentId,omitempty"`
	Bridge            string `json:"bridge,omitempty"`
}

// Mirror is typed access to the two namespaces on top of a Backend. Reads
// never fail: missing or malformed blobs decode as empty values.
type Mirror struct {
	backend Backend
}

// NewMirror wraps backend.
func NewMirror(backend Backend) *Mirror {
	return &Mirror{backend: backend}
}

// Backend returns the wrapped backend.
func (m *Mirror) Backend() Backend {
	return m.backend
}

// Watcher returns the backend as a Watcher, or nil if it cannot observe
// foreign writes.
func (m *Mirror) Watcher() Watcher {
	w, _ := m.backend.(Watcher)
	return w
}

// ReadTransport returns the transport session blob and whether it exists.
func (m *Mirror) ReadTransport() (TransportSession, bool) {
	raw, ok, err := m.backend.Get(KeyTransport)
	if err != nil || !ok {
		return TransportSession{}, false
	}
	return ParseTransport(raw), true
}

// WriteTransport is used by transport implementations to persist their session.
func (m *Mirror) WriteTransport(ts TransportSession) error {
	data, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	return m.backend.Set(KeyTransport, string(data))
}

// ClearTransport removes the transport namespace.
func (m *Mirror) ClearTransport() error {
	return m.backend.Remove(KeyTransport)
}

// ReadService returns the service bookkeeping blob.
func (m *Mirror) ReadService() ServiceState {
	raw, ok, err := m.backend.Get(KeyService)
	if err != nil || !ok {
		return ServiceState{}
	}
	return ParseService(raw)
}

// WriteService replaces the service namespace with s.
func (m *Mirror) WriteService(s ServiceState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.backend.Set(KeyService, string(data))
}

// ClearService removes the service namespace.
func (m *Mirror) ClearService() error {
	return m.backend.Remove(KeyService)
}

// ParseObject decodes a JSON object, returning an empty map for empty or
// malformed input.
func ParseObject(raw string) map[string]any {
	out := map[string]any{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// ParseTransport decodes a transport blob leniently.
func ParseTransport(raw string) TransportSession {
	var ts TransportSession
	if raw == "" {
		return ts
	}
	if err := json.Unmarshal([]byte(raw), &ts); err != nil {
		// Older transports wrote fields with loose types; salvage what we can.
		obj := ParseObject(raw)
		ts = TransportSession{
			Connected: cast.ToBool(obj["connected"]),
			Bridge:    cast.ToString(obj["bridge"]),
		}
		if accounts, ok := obj["accounts"].([]any); ok {
			for _, a := range accounts {
				if b, err := json.Marshal(a); err == nil {
					ts.Accounts = append(ts.Accounts, b)
				}
			}
		}
	}
	return ts
}

// ParseService decodes a service blob. Numbers written as strings by older
// versions are accepted.
func ParseService(raw string) ServiceState {
	obj := ParseObject(raw)
	return ServiceState{
		ConnectionEXP:     cast.ToInt64(obj["connectionEXP"]),
		ConnectionEST:     cast.ToInt64(obj["connectionEST"]),
		ConnectionTimeout: cast.ToInt64(obj["connectionTimeout"]),
		SignedJWT:         cast.ToString(obj["signedJWT"]),
		WalletAppID:       cast.ToString(obj["walletAppId"]),
		IframeParentID:    cast.ToString(obj["iframeParentId"]),
		Bridge:            cast.ToString(obj["bridge"]),
	}
}
