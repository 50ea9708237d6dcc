// Package types holds the data model shared by the wallet session client:
// session state, account records, wallet requests and dispatcher results.
package types

import (
	"bytes"
	"encoding/json"
)

// Status is the connection status of a session.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusPending      Status = "pending"
	StatusConnected    Status = "connected"
)

// Wallet RPC method names understood by Provenance wallets.
const (
	WalletMethodSendTransaction = "provenance_sendTransaction"
	WalletMethodSign            = "provenance_sign"
	WalletMethodSignJWT         = "provenance_signJWT"
	WalletMethodAction          = "wallet_action"
)

// Names reported in State.PendingMethod while a dispatcher is in flight.
const (
	PendingConnect             = "connect"
	PendingSendMessage         = "sendMessage"
	PendingSwitchToGroup       = "switchToGroup"
	PendingSignJWT             = "signJWT"
	PendingSignHexMessage      = "signHexMessage"
	PendingRemovePendingMethod = "removePendingMethod"
)

// Wallet actions carried by the wallet_action method.
const (
	ActionSwitchToGroup       = "switchToGroup"
	ActionRemovePendingMethod = "removePendingMethod"
)

// PeerMeta describes the wallet on the other end of the bridge.
type PeerMeta struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Icons       []string `json:"icons"`
}

// WalletInfo identifies the wallet software that owns an account.
type WalletInfo struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	Coin string `json:"coin,omitempty"`
}

// GroupPolicy is set when the wallet acts on behalf of a group account.
type GroupPolicy struct {
	Address     string `json:"address"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Attribute is an account attribute reported by the wallet.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

// Account is the normalized account record derived from the transport
// accounts array.
type Account struct {
	Address                string       `json:"address"`
	PublicKey              string       `json:"publicKey"`
	JWT                    string       `json:"jwt"`
	WalletInfo             WalletInfo   `json:"walletInfo"`
	RepresentedGroupPolicy *GroupPolicy `json:"representedGroupPolicy"`
	Attributes             []Attribute  `json:"attributes"`
}

// GasPrice is the optional gas price attached to transaction metadata.
type GasPrice struct {
	GasPrice      float64 `json:"gasPrice"`
	GasPriceDenom string  `json:"gasPriceDenom"`
}

// ModalState is the connect-modal state surfaced to UIs.
type ModalState struct {
	ShowModal   bool   `json:"showModal"`
	IsMobile    bool   `json:"isMobile"`
	QRCodeURL   string `json:"QRCodeUrl"`
	DynamicURL  string `json:"dynamicUrl"`
	WalletAppID string `json:"walletAppId,omitempty"`
}

// ModalUpdate is a partial modal change; nil fields keep their current value.
// A nil ShowModal counts as closing the modal for status purposes.
type ModalUpdate struct {
	ShowModal   *bool   `json:"showModal,omitempty"`
	IsMobile    *bool   `json:"isMobile,omitempty"`
	QRCodeURL   *string `json:"QRCodeUrl,omitempty"`
	DynamicURL  *string `json:"dynamicUrl,omitempty"`
	WalletAppID string  `json:"walletAppId,omitempty"`
}

// Apply merges the update into m and returns the result.
func (u ModalUpdate) Apply(m ModalState) ModalState {
	if u.ShowModal != nil {
		m.ShowModal = *u.ShowModal
	}
	if u.IsMobile != nil {
		m.IsMobile = *u.IsMobile
	}
	if u.QRCodeURL != nil {
		m.QRCodeURL = *u.QRCodeURL
	}
	if u.DynamicURL != nil {
		m.DynamicURL = *u.DynamicURL
	}
	if u.WalletAppID != "" {
		m.WalletAppID = u.WalletAppID
	}
	return m
}

// State is the authoritative in-memory session state of one service.
type State struct {
	Status                 Status       `json:"status"`
	Address                string       `json:"address"`
	PublicKey              string       `json:"publicKey"`
	SignedJWT              string       `json:"signedJWT"`
	RepresentedGroupPolicy *GroupPolicy `json:"representedGroupPolicy"`
	WalletInfo             WalletInfo   `json:"walletInfo"`
	Attributes             []Attribute  `json:"attributes"`
	Bridge                 string       `json:"bridge"`
	// ConnectionTimeout is in milliseconds; EST and EXP are epoch milliseconds.
	ConnectionTimeout int64      `json:"connectionTimeout"`
	ConnectionEST     int64      `json:"connectionEST"`
	ConnectionEXP     int64      `json:"connectionEXP"`
	Modal             ModalState `json:"modal"`
	PendingMethod     string     `json:"pendingMethod"`
	WalletAppID       string     `json:"walletAppId,omitempty"`
	Peer              *PeerMeta  `json:"peer"`

	// OnDisconnect runs once when the session disconnects.
	OnDisconnect func(message string) `json:"-"`
}

// Clone returns a copy of s that shares no slices or pointers with it.
func (s State) Clone() State {
	out := s
	if s.RepresentedGroupPolicy != nil {
		gp := *s.RepresentedGroupPolicy
		out.RepresentedGroupPolicy = &gp
	}
	if s.Attributes != nil {
		out.Attributes = append([]Attribute(nil), s.Attributes...)
	}
	if s.Peer != nil {
		p := *s.Peer
		p.Icons = append([]string(nil), s.Peer.Icons...)
		out.Peer = &p
	}
	return out
}

// WithAccount copies the account-derived fields of a into s.
func (s State) WithAccount(a Account) State {
	s.Address = a.Address
	s.PublicKey = a.PublicKey
	s.SignedJWT = a.JWT
	s.WalletInfo = a.WalletInfo
	s.RepresentedGroupPolicy = a.RepresentedGroupPolicy
	s.Attributes = a.Attributes
	return s
}

// Request is the JSON-RPC envelope sent to the wallet.
type Request struct {
	ID      int64    `json:"id"`
	JSONRPC string   `json:"jsonrpc"`
	Method  string   `json:"method"`
	Params  []string `json:"params"`
}

// Result is what every dispatcher returns. Failures set Error; dispatchers
// never return Go errors.
type Result struct {
	Valid   bool            `json:"valid"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    any             `json:"data,omitempty"`
	Request *Request        `json:"request,omitempty"`
}

// Failed reports whether the dispatcher returned an error.
func (r Result) Failed() bool {
	return r.Error != ""
}

// Truthy reports whether a raw wallet response counts as a value: anything
// except empty, null, false, 0 and "".
func Truthy(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	switch string(v) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}
