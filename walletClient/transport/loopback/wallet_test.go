package loopback

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cosmos/cosmos-sdk/crypto/keys/secp256k1"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-wallet-connect/walletClient/accounts"
	"github.com/pushchain/push-wallet-connect/walletClient/encoding"
	"github.com/pushchain/push-wallet-connect/walletClient/transport"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

func newWallet(t *testing.T) (*Wallet, *clock.Mock) {
	t.Helper()
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	w, err := FromSecret("loopback-test", "tp", clk)
	require.NoError(t, err)
	return w, clk
}

func meta(t *testing.T, m map[string]any) string {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return string(b)
}

func TestWalletAddressIsDeterministic(t *testing.T) {
	a, _ := newWallet(t)
	b, _ := newWallet(t)
	assert.Equal(t, a.Address(), b.Address())
	assert.True(t, strings.HasPrefix(a.Address(), "tp1"))
	require.NoError(t, encoding.ValidateAddress(a.Address(), "tp"))
}

func TestFactoryAutoApproves(t *testing.T) {
	w, _ := newWallet(t)
	c, err := w.Factory()(transport.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)

	require.NoError(t, c.CreateSession(context.Background(), transport.SessionOptions{}))
	assert.True(t, c.Connected())
	acct := accounts.Resolve(c.Accounts())
	assert.Equal(t, w.Address(), acct.Address)
	assert.Equal(t, WalletID, acct.WalletInfo.ID)
}

func TestHandleSign(t *testing.T) {
	w, _ := newWallet(t)
	msg := []byte("hello wallet")
	res, err := w.Handle(context.Background(), types.Request{
		Method: types.WalletMethodSign,
		Params: []string{meta(t, map[string]any{"address": w.Address()}), hexutil.Encode(msg)},
	})
	require.NoError(t, err)

	var sigHex string
	require.NoError(t, json.Unmarshal(res, &sigHex))
	sig, err := hexutil.Decode(sigHex)
	require.NoError(t, err)

	pub := secp256k1.GenPrivKeyFromSecret([]byte("loopback-test")).PubKey()
	assert.True(t, pub.VerifySignature(msg, sig))
}

func TestHandleRejectsForeignAddress(t *testing.T) {
	w, _ := newWallet(t)
	_, err := w.Handle(context.Background(), types.Request{
		Method: types.WalletMethodSign,
		Params: []string{meta(t, map[string]any{"address": "tp1someoneelse"}), "0x00"},
	})
	assert.Error(t, err)
}

func TestHandleSendTransaction(t *testing.T) {
	w, _ := newWallet(t)
	coin, err := encoding.NormalizeCoin("1", "hash")
	require.NoError(t, err)
	b64, err := encoding.AnyBase64(encoding.MsgSend(w.Address(), w.Address(), coin))
	require.NoError(t, err)

	res, err := w.Handle(context.Background(), types.Request{
		Method: types.WalletMethodSendTransaction,
		Params: []string{meta(t, map[string]any{"address": w.Address()}), hexutil.Encode([]byte(b64))},
	})
	require.NoError(t, err)

	var out struct {
		TxHash   string   `json:"txhash"`
		Messages []string `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(res, &out))
	assert.Len(t, out.TxHash, 64)
	assert.Equal(t, []string{"/cosmos.bank.v1beta1.MsgSend"}, out.Messages)
}

func TestHandleSignJWT(t *testing.T) {
	w, clk := newWallet(t)
	exp := clk.Now().Add(time.Hour).Unix()
	res, err := w.Handle(context.Background(), types.Request{
		Method: types.WalletMethodSignJWT,
		Params: []string{meta(t, map[string]any{"address": w.Address(), "expires": exp})},
	})
	require.NoError(t, err)

	var jwt string
	require.NoError(t, json.Unmarshal(res, &jwt))
	parts := strings.Split(jwt, ".")
	require.Len(t, parts, 3)

	claimsJSON, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var claims map[string]any
	require.NoError(t, json.Unmarshal(claimsJSON, &claims))
	assert.Equal(t, float64(exp), claims["exp"])
	assert.Equal(t, w.Address(), claims["addr"])
}

func TestHandleWalletAction(t *testing.T) {
	w, _ := newWallet(t)
	res, err := w.Handle(context.Background(), types.Request{
		Method: types.WalletMethodAction,
		Params: []string{meta(t, map[string]any{"action": types.ActionSwitchToGroup})},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"action":"switchToGroup"}`, string(res))

	_, err = w.Handle(context.Background(), types.Request{Method: "unknown", Params: []string{"{}"}})
	assert.Error(t, err)
	_, err = w.Handle(context.Background(), types.Request{Method: types.WalletMethodSign})
	assert.Error(t, err)
}
