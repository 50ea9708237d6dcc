// Package loopback is a development wallet that answers requests locally
// with a secp256k1 key. It plugs into the service like any bridge
// transport, which makes the whole client runnable without a phone.
package loopback

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cast"

	"github.com/pushchain/push-wallet-connect/walletClient/encoding"
	"github.com/pushchain/push-wallet-connect/walletClient/storage"
	"github.com/pushchain/push-wallet-connect/walletClient/transport"
	"github.com/pushchain/push-wallet-connect/walletClient/transport/memory"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

const (
	// WalletID identifies the loopback wallet in account walletInfo.
	WalletID = "loopback"

	jwtIssuer = "provenance.io"
)

// Wallet holds the dev wallet key and answers requests with it.
type Wallet struct {
	key     *secp256k1.PrivKey
	address string
	clock   clock.Clock
}

// NewWallet derives the account address for key under prefix. A nil key is
// generated.
func NewWallet(key *secp256k1.PrivKey, prefix string, clk clock.Clock) (*Wallet, error) {
	if key == nil {
		key = secp256k1.GenPrivKey()
	}
	if clk == nil {
		clk = clock.New()
	}
	addr, err := bech32.ConvertAndEncode(prefix, key.PubKey().Address())
	if err != nil {
		return nil, fmt.Errorf("loopback: failed to encode address: %w", err)
	}
	return &Wallet{key: key, address: addr, clock: clk}, nil
}

// FromSecret builds a wallet with a deterministic key.
func FromSecret(secret, prefix string, clk clock.Clock) (*Wallet, error) {
	return NewWallet(secp256k1.GenPrivKeyFromSecret([]byte(secret)), prefix, clk)
}

func (w *Wallet) Address() string { return w.address }

// PublicKey is the base64 compressed public key.
func (w *Wallet) PublicKey() string {
	return base64.StdEncoding.EncodeToString(w.key.PubKey().Bytes())
}

// Account is what the wallet reports in the modern accounts shape.
func (w *Wallet) Account() types.Account {
	return types.Account{
		Address:    w.address,
		PublicKey:  w.PublicKey(),
		WalletInfo: types.WalletInfo{ID: WalletID, Name: "Loopback Dev Wallet", Coin: "HASH"},
	}
}

// Peer is the peer metadata reported on connect.
func (w *Wallet) Peer() *types.PeerMeta {
	return &types.PeerMeta{Name: "Loopback Dev Wallet", Description: "local development wallet", URL: "http://localhost"}
}

// Factory returns a transport.Factory whose connectors auto-approve with
// this wallet and answer its requests.
func (w *Wallet) Factory() transport.Factory {
	return memory.Factory(func(c *memory.Connector) {
		acct, _ := json.Marshal(w.Account())
		c.AutoApprove([]json.RawMessage{acct}, w.Peer()).Respond(w.Handle)
	})
}

// Handle answers a single wallet request.
func (w *Wallet) Handle(_ context.Context, req types.Request) (json.RawMessage, error) {
	if len(req.Params) == 0 {
		return nil, fmt.Errorf("request has no metadata")
	}
	meta := storage.ParseObject(req.Params[0])
	if addr := cast.ToString(meta["address"]); addr != "" && addr != w.address {
		return nil, fmt.Errorf("request for %s, wallet is %s", addr, w.address)
	}

	switch req.Method {
	case types.WalletMethodSign:
		return w.sign(req.Params[1:])
	case types.WalletMethodSendTransaction:
		return w.sendTransaction(req.Params[1:])
	case types.WalletMethodSignJWT:
		return w.signJWT(cast.ToInt64(meta["expires"]))
	case types.WalletMethodAction:
		return json.Marshal(map[string]any{"success": true, "action": cast.ToString(meta["action"])})
	default:
		return nil, fmt.Errorf("unsupported method %s", req.Method)
	}
}

func (w *Wallet) sign(params []string) (json.RawMessage, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("nothing to sign")
	}
	msg, err := hex.DecodeString(strings.TrimPrefix(params[0], "0x"))
	if err != nil {
		return nil, fmt.Errorf("message is not hex: %w", err)
	}
	sig, err := w.key.Sign(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(hexutil.Encode(sig))
}

func (w *Wallet) sendTransaction(params []string) (json.RawMessage, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("no messages")
	}
	h := sha256.New()
	typeURLs := make([]string, 0, len(params))
	for _, p := range params {
		raw, err := hexutil.Decode(p)
		if err != nil {
			return nil, fmt.Errorf("message is not 0x hex: %w", err)
		}
		typeURL, _, err := encoding.DecodeAnyBase64(string(raw))
		if err != nil {
			return nil, err
		}
		typeURLs = append(typeURLs, typeURL)
		h.Write(raw)
	}
	return json.Marshal(map[string]any{
		"txhash":   strings.ToUpper(hex.EncodeToString(h.Sum(nil))),
		"code":     0,
		"messages": typeURLs,
	})
}

func (w *Wallet) signJWT(expires int64) (json.RawMessage, error) {
	now := w.clock.Now().Unix()
	if expires <= 0 {
		expires = now + 86400
	}
	header, _ := json.Marshal(map[string]string{"alg": "ES256K", "typ": "JWT"})
	claims, _ := json.Marshal(map[string]any{
		"sub":  w.PublicKey(),
		"iss":  jwtIssuer,
		"iat":  now,
		"exp":  expires,
		"addr": w.address,
	})
	signing := b64url(header) + "." + b64url(claims)
	sig, err := w.key.Sign([]byte(signing))
	if err != nil {
		return nil, err
	}
	return json.Marshal(signing + "." + b64url(sig))
}

func b64url(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
