package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-wallet-connect/walletClient/accounts"
	"github.com/pushchain/push-wallet-connect/walletClient/storage"
	"github.com/pushchain/push-wallet-connect/walletClient/transport"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

func newMirror(t *testing.T) *storage.Mirror {
	tab := storage.NewMemoryStore().Tab()
	t.Cleanup(tab.Close)
	return storage.NewMirror(tab)
}

func TestApprovePersistsAndEmits(t *testing.T) {
	mirror := newMirror(t)
	c := New(transport.Options{Bridge: "wss://bridge", Mirror: mirror, Logger: zerolog.Nop()})

	var got []transport.Payload
	c.On(transport.EventConnect, func(err error, p transport.Payload) {
		require.NoError(t, err)
		got = append(got, p)
	})

	require.NoError(t, c.CreateSession(context.Background(), transport.SessionOptions{WalletAppID: "figure_web"}))
	assert.False(t, c.Connected())
	assert.Contains(t, c.URI(), "wc:")
	assert.Equal(t, "figure_web", c.SessionOptions().WalletAppID)

	acct := accounts.FromAccount(types.Account{Address: "tp1abc"})
	require.NoError(t, c.Approve(acct, &types.PeerMeta{Name: "Figure"}))

	assert.True(t, c.Connected())
	require.Len(t, got, 1)
	assert.Equal(t, "tp1abc", accounts.FirstAddress(got[0].Accounts))

	ts, ok := mirror.ReadTransport()
	require.True(t, ok)
	assert.True(t, ts.Connected)
	assert.Equal(t, "wss://bridge", ts.Bridge)
	assert.Equal(t, "tp1abc", accounts.FirstAddress(ts.Accounts))
}

func TestRestoreFromStorage(t *testing.T) {
	mirror := newMirror(t)
	first := New(transport.Options{Bridge: "wss://a", Mirror: mirror, Logger: zerolog.Nop()})
	require.NoError(t, first.Approve(accounts.FromStrings("tp1legacy", "pk"), nil))

	restored := New(transport.Options{Bridge: "wss://other", Mirror: mirror, Logger: zerolog.Nop()})
	assert.True(t, restored.Connected())
	assert.Equal(t, "wss://a", restored.Bridge())
	assert.Equal(t, "tp1legacy", accounts.FirstAddress(restored.Accounts()))
}

func TestAutoApproveAndRequests(t *testing.T) {
	c := New(transport.Options{Logger: zerolog.Nop()}).
		AutoApprove(accounts.FromAccount(types.Account{Address: "tp1abc"}), nil).
		Respond(func(_ context.Context, req types.Request) (json.RawMessage, error) {
			return json.RawMessage(`"signed:` + req.Method + `"`), nil
		})

	_, err := c.SendCustomRequest(context.Background(), types.Request{Method: "provenance_sign"})
	assert.Error(t, err, "requests before connect fail")

	require.NoError(t, c.CreateSession(context.Background(), transport.SessionOptions{}))
	require.True(t, c.Connected())

	res, err := c.SendCustomRequest(context.Background(), types.Request{ID: 7, Method: "provenance_sign"})
	require.NoError(t, err)
	assert.JSONEq(t, `"signed:provenance_sign"`, string(res))
	require.Len(t, c.Requests(), 2)
	assert.Equal(t, int64(7), c.Requests()[1].ID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.SendCustomRequest(ctx, types.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKillSessionClearsAndEmitsDisconnect(t *testing.T) {
	mirror := newMirror(t)
	c := New(transport.Options{Mirror: mirror, Logger: zerolog.Nop()})
	require.NoError(t, c.Approve(accounts.FromStrings("tp1", "pk"), nil))

	var msg string
	unsubscribe := c.On(transport.EventDisconnect, func(_ error, p transport.Payload) { msg = p.Message })
	require.NoError(t, c.KillSession(context.Background(), "bye"))

	assert.Equal(t, "bye", msg)
	assert.False(t, c.Connected())
	_, ok := mirror.ReadTransport()
	assert.False(t, ok)

	unsubscribe()
	msg = ""
	c.Drop("again")
	assert.Empty(t, msg)
}
