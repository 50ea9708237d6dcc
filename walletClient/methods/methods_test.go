package methods

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/golang/mock/gomock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterrors "github.com/pushchain/push-wallet-connect/walletClient/errors"
	"github.com/pushchain/push-wallet-connect/walletClient/transport/mocks"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
	"github.com/pushchain/push-wallet-connect/walletClient/wallets"
)

type fixture struct {
	ctrl      *gomock.Controller
	connector *mocks.MockConnector
	clock     *clock.Mock
	notifier  *wallets.Recorder
	env       Env
}

func initFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.ctrl = gomock.NewController(t)
	f.connector = mocks.NewMockConnector(f.ctrl)
	f.clock = clock.NewMock()
	f.clock.Set(time.UnixMilli(1_700_000_000_000))
	f.notifier = &wallets.Recorder{}
	f.env = Env{
		Connector: f.connector,
		Address:   "tp1sender",
		PublicKey: "pubkey",
		Notifier:  f.notifier,
		Clock:     f.clock,
		NextID:    func() int64 { return 42 },
		Logger:    zerolog.Nop(),
	}
	return f
}

func decodeMeta(t *testing.T, req *types.Request) map[string]any {
	t.Helper()
	require.NotNil(t, req)
	require.NotEmpty(t, req.Params)
	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.Params[0]), &meta))
	return meta
}

func TestNoConnectorNeverCallsTransport(t *testing.T) {
	f := initFixture(t)
	f.env.Connector = nil

	results := map[string]types.Result{
		"sendMessage":    SendMessage(context.Background(), f.env, SendMessageParams{Messages: Message("AAAA")}),
		"walletAction":   SendWalletAction(context.Background(), f.env, SwitchToGroup("tp1group", "")),
		"signJWT":        SignJWT(context.Background(), f.env, SignJWTParams{ExpiresSeconds: 60}),
		"signHexMessage": SignHexMessage(context.Background(), f.env, SignHexMessageParams{HexMessage: "0xabcd"}),
	}
	for name, res := range results {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, walleterrors.MsgNoWalletConnected, res.Error)
			assert.False(t, res.Valid)
			assert.NotNil(t, res.Request, "request is still returned")
			assert.NotNil(t, res.Data)
		})
	}
	assert.Empty(t, f.notifier.Events())
}

func TestSendMessageParams(t *testing.T) {
	tests := []struct {
		name       string
		messages   []string
		wantParams int
	}{
		{name: "single message", messages: Message("CgRtc2cx"), wantParams: 2},
		{name: "two messages", messages: []string{"CgRtc2cx", "CgRtc2cy"}, wantParams: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := initFixture(t)
			var sent types.Request
			f.connector.EXPECT().
				SendCustomRequest(gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, req types.Request) (json.RawMessage, error) {
					sent = req
					return json.RawMessage(`{"txhash":"ABC"}`), nil
				})

			res := SendMessage(context.Background(), f.env, SendMessageParams{Messages: tt.messages, Memo: "hi", CustomID: "c-1"})
			require.False(t, res.Failed())
			assert.True(t, res.Valid)
			assert.JSONEq(t, `{"txhash":"ABC"}`, string(res.Result))

			assert.Len(t, sent.Params, tt.wantParams)
			assert.Equal(t, int64(42), sent.ID)
			assert.Equal(t, "2.0", sent.JSONRPC)
			assert.Equal(t, types.WalletMethodSendTransaction, sent.Method)
			for i, m := range tt.messages {
				decoded, err := hexutil.Decode(sent.Params[i+1])
				require.NoError(t, err)
				assert.Equal(t, m, string(decoded))
			}

			meta := decodeMeta(t, &sent)
			assert.Equal(t, "Send Message", meta["description"])
			assert.Equal(t, "tp1sender", meta["address"])
			assert.Equal(t, float64(1_700_000_000_000), meta["date"])
			assert.Equal(t, "hi", meta["memo"])
			assert.Equal(t, "c-1", meta["customId"])
		})
	}
}

func TestSendMessageParamsDecode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Messages
		wantErr bool
	}{
		{name: "single string", body: `{"message":"Y29zbW9z"}`, want: Messages{"Y29zbW9z"}},
		{name: "list", body: `{"message":["a","b"]}`, want: Messages{"a", "b"}},
		{name: "empty string", body: `{"message":""}`},
		{name: "absent", body: `{}`},
		{name: "number", body: `{"message":5}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p SendMessageParams
			err := json.Unmarshal([]byte(tt.body), &p)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Messages)
		})
	}
}

func TestSendMessageShallowValidity(t *testing.T) {
	for raw, valid := range map[string]bool{
		`null`:            false,
		`false`:           false,
		`""`:              false,
		`0`:               false,
		`"0xdeadbeef"`:    true,
		`{"code":5}`:      true, // failed tx codes still count as a response
		`{"valid":false}`: true,
	} {
		f := initFixture(t)
		f.connector.EXPECT().SendCustomRequest(gomock.Any(), gomock.Any()).Return(json.RawMessage(raw), nil)
		res := SendMessage(context.Background(), f.env, SendMessageParams{Messages: Message("AA==")})
		assert.Equal(t, valid, res.Valid, raw)
		assert.Empty(t, res.Error, raw)
	}
}

func TestTransportErrorIsReturnedNotThrown(t *testing.T) {
	f := initFixture(t)
	f.connector.EXPECT().SendCustomRequest(gomock.Any(), gomock.Any()).Return(nil, errors.New("bridge closed"))

	res := SignHexMessage(context.Background(), f.env, SignHexMessageParams{HexMessage: "0x01"})
	assert.Equal(t, "bridge closed", res.Error)
	assert.False(t, res.Valid)
	assert.Equal(t, types.WalletMethodSign, res.Request.Method)
}

func TestSignHexMessageKeepsHex(t *testing.T) {
	f := initFixture(t)
	f.connector.EXPECT().
		SendCustomRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req types.Request) (json.RawMessage, error) {
			require.Len(t, req.Params, 2)
			assert.Equal(t, "48656c6c6f", req.Params[1])
			meta := decodeMeta(t, &req)
			assert.Equal(t, "Sign Message", meta["description"])
			assert.Equal(t, "pubkey", meta["publicKey"])
			return json.RawMessage(`"0xsig"`), nil
		})

	res := SignHexMessage(context.Background(), f.env, SignHexMessageParams{HexMessage: "48656c6c6f"})
	assert.True(t, res.Valid)
}

func TestSignJWT(t *testing.T) {
	f := initFixture(t)
	f.connector.EXPECT().
		SendCustomRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req types.Request) (json.RawMessage, error) {
			assert.Equal(t, types.WalletMethodSignJWT, req.Method)
			require.Len(t, req.Params, 1)
			meta := decodeMeta(t, &req)
			assert.Equal(t, float64(1_700_000_000+3600), meta["expires"])
			return json.RawMessage(`"a.b.c"`), nil
		})

	res := SignJWT(context.Background(), f.env, SignJWTParams{ExpiresSeconds: 3600})
	jwt, ok := SignedJWT(res)
	require.True(t, ok)
	assert.Equal(t, "a.b.c", jwt)

	_, ok = SignedJWT(types.Result{Valid: true, Result: json.RawMessage(`{"not":"a string"}`)})
	assert.False(t, ok)
}

func TestWalletActions(t *testing.T) {
	f := initFixture(t)
	var sent []types.Request
	f.connector.EXPECT().
		SendCustomRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req types.Request) (json.RawMessage, error) {
			sent = append(sent, req)
			return json.RawMessage(`{"success":true}`), nil
		}).Times(3)

	SendWalletAction(context.Background(), f.env, SwitchToGroup("tp1group", "Use group"))
	SendWalletAction(context.Background(), f.env, SwitchToGroup("", ""))
	SendWalletAction(context.Background(), f.env, RemovePendingMethod("c-9"))
	require.Len(t, sent, 3)

	for _, req := range sent {
		assert.Equal(t, types.WalletMethodAction, req.Method)
		assert.Len(t, req.Params, 1)
	}

	meta := decodeMeta(t, &sent[0])
	assert.Equal(t, "switchToGroup", meta["action"])
	assert.Equal(t, map[string]any{"address": "tp1group"}, meta["payload"])
	assert.Equal(t, "Use group", meta["description"])

	meta = decodeMeta(t, &sent[1])
	assert.NotContains(t, meta, "payload")

	meta = decodeMeta(t, &sent[2])
	assert.Equal(t, "removePendingMethod", meta["action"])
	assert.Equal(t, map[string]any{"customId": "c-9"}, meta["payload"])
}

func TestKnownWalletIsNotifiedBeforeRequest(t *testing.T) {
	f := initFixture(t)
	f.env.WalletAppID = "figure_web"
	gomock.InOrder(
		f.connector.EXPECT().SendCustomRequest(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, types.Request) (json.RawMessage, error) {
				require.Len(t, f.notifier.Events(), 1, "event fires before the request")
				return json.RawMessage(`true`), nil
			}),
	)

	SendMessage(context.Background(), f.env, SendMessageParams{Messages: Message("AA=="), CustomID: "abc"})
	ev := f.notifier.Events()[0]
	assert.Equal(t, "figure_web", ev.WalletID)
	assert.Equal(t, wallets.EventWalletApp, ev.Event.Event)
	assert.Equal(t, "abc", ev.Event.CustomID)
}

func TestRandomRequestIDs(t *testing.T) {
	env := Env{}
	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		id := env.requestID()
		assert.GreaterOrEqual(t, id, int64(0))
		assert.Less(t, id, int64(maxRequestID))
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1)
}
