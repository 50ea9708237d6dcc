// Package accounts turns the transport's raw accounts array into a
// normalized account record.
//
// Wallets report accounts in one of two shapes, selected only by the array
// length:
//
//	[ {address, publicKey, jwt, walletInfo, representedGroupPolicy, attributes} ]  // one entry: modern object
//	[ "address", "publicKey", "jwt", ... ]                                          // more than one: legacy tuple
//
// Older wallets still send the legacy tuple, so both must keep working.
package accounts

import (
	"encoding/json"

	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// Shape is the detected layout of an accounts array.
type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeModern
	ShapeLegacy
)

func (s Shape) String() string {
	switch s {
	case ShapeModern:
		return "modern"
	case ShapeLegacy:
		return "legacy"
	default:
		return "empty"
	}
}

// DetectShape applies the length rule: 1 entry is modern, more is legacy.
func DetectShape(raw []json.RawMessage) Shape {
	switch {
	case len(raw) == 1:
		return ShapeModern
	case len(raw) > 1:
		return ShapeLegacy
	default:
		return ShapeEmpty
	}
}

// Resolve normalizes raw. Empty input, and entries that do not decode into
// the detected shape, yield a zero Account.
func Resolve(raw []json.RawMessage) types.Account {
	switch DetectShape(raw) {
	case ShapeModern:
		var acct types.Account
		if err := json.Unmarshal(raw[0], &acct); err != nil {
			return types.Account{}
		}
		return acct
	case ShapeLegacy:
		return types.Account{
			Address:   positional(raw, 0),
			PublicKey: positional(raw, 1),
			JWT:       positional(raw, 2),
		}
	default:
		return types.Account{}
	}
}

// FirstAddress returns the address Resolve would produce. It is what
// cross-tab diffs compare instead of the whole array.
func FirstAddress(raw []json.RawMessage) string {
	return Resolve(raw).Address
}

func positional(raw []json.RawMessage, i int) string {
	if i >= len(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw[i], &s); err != nil {
		return ""
	}
	return s
}

// FromStrings builds a raw accounts array from legacy string entries.
func FromStrings(entries ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(entries))
	for _, e := range entries {
		b, _ := json.Marshal(e)
		out = append(out, b)
	}
	return out
}

// FromAccount builds a modern single-entry accounts array.
func FromAccount(a types.Account) []json.RawMessage {
	b, err := json.Marshal(a)
	if err != nil {
		return nil
	}
	return []json.RawMessage{b}
}
