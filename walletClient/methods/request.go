// Package methods holds one dispatcher per wallet operation. A dispatcher
// builds the JSON-RPC request, sends it over the connector and normalizes
// the answer into a types.Result. Dispatchers never return errors: every
// failure is reported in Result.Error.
package methods

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	walleterrors "github.com/pushchain/push-wallet-connect/walletClient/errors"
	"github.com/pushchain/push-wallet-connect/walletClient/transport"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
	"github.com/pushchain/push-wallet-connect/walletClient/wallets"
)

const (
	jsonRPCVersion = "2.0"

	// request ids stay below 2^53 so wallets decoding them as doubles keep them exact
	maxRequestID = 1 << 53
)

// Env is the slice of session state a dispatcher needs.
type Env struct {
	Connector   transport.Connector
	Address     string
	PublicKey   string
	WalletAppID string
	Notifier    wallets.Notifier
	Clock       clock.Clock
	// NextID overrides the random request id source.
	NextID func() int64
	Logger zerolog.Logger
}

func (e Env) now() time.Time {
	if e.Clock == nil {
		return time.Now()
	}
	return e.Clock.Now()
}

func (e Env) requestID() int64 {
	if e.NextID != nil {
		return e.NextID()
	}
	return rand.Int63n(maxRequestID)
}

func (e Env) newRequest(method string, metadata any, params ...string) (*types.Request, error) {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, walleterrors.NewEncodingError(method, "failed to encode metadata", err)
	}
	return &types.Request{
		ID:      e.requestID(),
		JSONRPC: jsonRPCVersion,
		Method:  method,
		Params:  append([]string{string(meta)}, params...),
	}, nil
}

// send delivers req and fills in the result. The wallet app side channel,
// when the active wallet has one, is nudged before the request goes out.
func (e Env) send(ctx context.Context, req *types.Request, data any, customID string) types.Result {
	res := types.Result{Data: data, Request: req}
	if e.Connector == nil {
		res.Error = walleterrors.Message(walleterrors.NewNoConnectorError(req.Method))
		return res
	}

	wallets.Notify(e.Notifier, e.WalletAppID, wallets.Event{
		Event:    wallets.EventWalletApp,
		CustomID: customID,
		Method:   req.Method,
	})

	raw, err := e.Connector.SendCustomRequest(ctx, *req)
	if err != nil {
		e.Logger.Warn().
			Err(walleterrors.NewTransportError(req.Method, "wallet request failed", err)).
			Int64("request_id", req.ID).
			Msg("wallet request failed")
		res.Error = err.Error()
		return res
	}
	res.Result = raw
	res.Valid = types.Truthy(raw)
	return res
}

// failed builds the result for a request that could not be constructed.
func failed(data any, err error) types.Result {
	return types.Result{Data: data, Error: walleterrors.Message(err)}
}

// HexUTF8 encodes s as 0x-prefixed hex of its UTF-8 bytes.
func HexUTF8(s string) string {
	return hexutil.Encode([]byte(s))
}
