package wallets

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	w, ok := Lookup("figure_web")
	require.True(t, ok)
	assert.Equal(t, MessagingWalletConnect, w.Messaging)
	assert.True(t, w.HasEventAction)

	_, ok = Lookup("")
	assert.False(t, ok)
	_, ok = Lookup("unknown_wallet")
	assert.False(t, ok)
}

func TestNotifyOnlyReachesWalletsWithEventAction(t *testing.T) {
	rec := &Recorder{}

	assert.True(t, Notify(rec, "figure_web", Event{Event: EventWalletApp, CustomID: "c1"}))
	assert.False(t, Notify(rec, "figure_mobile", Event{Event: EventWalletApp}))
	assert.False(t, Notify(rec, "nope", Event{Event: EventWalletApp}))
	assert.False(t, Notify(nil, "figure_web", Event{Event: EventWalletApp}))

	got := rec.Events()
	require.Len(t, got, 1)
	assert.Equal(t, "figure_web", got[0].WalletID)
	assert.Equal(t, "c1", got[0].Event.CustomID)
}

func TestNotifierFuncAndLogNotifier(t *testing.T) {
	var called string
	Notify(NotifierFunc(func(id string, ev Event) { called = id + ":" + ev.Event }), "figure_extension", Event{Event: EventResetTimeout, Timeout: 1000})
	assert.Equal(t, "figure_extension:resetTimeout", called)

	var buf bytes.Buffer
	n := NewLogNotifier(zerolog.New(&buf).Level(zerolog.DebugLevel))
	n.Notify("figure_web", Event{Event: EventResetTimeout, Timeout: 1800000})
	assert.Contains(t, buf.String(), `"timeout_ms":1800000`)
	assert.Contains(t, buf.String(), `"component":"wallet_notifier"`)
}
