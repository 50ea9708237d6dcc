package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/push-wallet-connect/walletClient/config"
	"github.com/pushchain/push-wallet-connect/walletClient/db"
	"github.com/pushchain/push-wallet-connect/walletClient/encoding"
	"github.com/pushchain/push-wallet-connect/walletClient/journal"
	"github.com/pushchain/push-wallet-connect/walletClient/methods"
	"github.com/pushchain/push-wallet-connect/walletClient/service"
	"github.com/pushchain/push-wallet-connect/walletClient/storage"
	"github.com/pushchain/push-wallet-connect/walletClient/store"
	"github.com/pushchain/push-wallet-connect/walletClient/transport/loopback"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
	"github.com/pushchain/push-wallet-connect/walletClient/wallets"
)

type testServer struct {
	server  *Server
	svc     *service.Service
	wallet  *loopback.Wallet
	journal *journal.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))

	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	w, err := loopback.FromSecret("api-test", "tp", clk)
	require.NoError(t, err)

	database, err := db.OpenInMemoryDB(true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	js := journal.NewStore(database.Client(), logger)

	svc, err := service.New(service.Options{
		Config: config.Config{
			Bridge:                   "wss://default.bridge",
			ConnectionTimeoutSeconds: 1800,
			JWTExpirationSeconds:     86400,
			Bech32Prefix:             "tp",
			DefaultGasPrice:          types.GasPrice{GasPrice: 19050, GasPriceDenom: "nhash"},
		},
		Mirror:  storage.NewMirror(storage.NewMemoryStore().Tab()),
		Factory: w.Factory(),
		Clock:   clk,
		Journal: js,
		Logger:  logger,
	})
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	return &testServer{
		server:  NewServer(logger, 0, svc, js, svc.Metrics().Handler()),
		svc:     svc,
		wallet:  w,
		journal: js,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	ts.server.Handler().ServeHTTP(w, req)
	return w
}

func decodeResult(t *testing.T, w *httptest.ResponseRecorder) types.Result {
	t.Helper()
	var res types.Result
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return res
}

func TestHandleHealth(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	server := &Server{
		logger: logger,
	}

	t.Run("Health check returns OK", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.handleHealth(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})
}

func TestHandleState(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/state", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response struct {
		Data      types.State `json:"data"`
		Timestamp time.Time   `json:"timestamp"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, types.StatusDisconnected, response.Data.Status)
	assert.Equal(t, "wss://default.bridge", response.Data.Bridge)
	assert.False(t, response.Timestamp.IsZero())
}

func TestHandleWallets(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/v1/wallets", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []wallets.Wallet `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Len(t, response.Data, len(wallets.Known))
}

func TestConnectAndDispatchOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	t.Run("Connect with the loopback wallet", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/connect", methods.ConnectParams{DurationSeconds: 60})
		assert.Equal(t, http.StatusOK, w.Code)
		res := decodeResult(t, w)
		assert.Empty(t, res.Error)

		state := ts.svc.State()
		assert.Equal(t, types.StatusConnected, state.Status)
		assert.Equal(t, ts.wallet.Address(), state.Address)
		assert.Equal(t, int64(60_000), state.ConnectionTimeout)
	})

	t.Run("Sign hex message", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/sign-hex-message", methods.SignHexMessageParams{
			HexMessage: methods.HexUTF8("hello"),
			CustomID:   "sig-1",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		res := decodeResult(t, w)
		assert.Empty(t, res.Error)
		assert.True(t, res.Valid)
	})

	t.Run("Send message accepts a string or a list", func(t *testing.T) {
		coin, err := encoding.NormalizeCoin("1", "hash")
		require.NoError(t, err)
		b64, err := encoding.AnyBase64(encoding.MsgSend(ts.wallet.Address(), ts.wallet.Address(), coin))
		require.NoError(t, err)

		for name, body := range map[string]string{
			"string": `{"message":"` + b64 + `"}`,
			"list":   `{"message":["` + b64 + `","` + b64 + `"]}`,
		} {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/send-message", strings.NewReader(body))
			w := httptest.NewRecorder()
			ts.server.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code, name)
			res := decodeResult(t, w)
			assert.Empty(t, res.Error, name)
			assert.True(t, res.Valid, name)
		}
	})

	t.Run("Send coin", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/send-coin", service.SendCoinParams{
			To:       ts.wallet.Address(),
			Amount:   "2",
			CustomID: "pay-1",
		})
		assert.Equal(t, http.StatusOK, w.Code)
		res := decodeResult(t, w)
		assert.Empty(t, res.Error)
		require.NotNil(t, res.Request)
		assert.Equal(t, types.WalletMethodSendTransaction, res.Request.Method)
	})

	t.Run("Wallet failures are reported in the result", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/send-coin", service.SendCoinParams{To: "cosmos1bad", Amount: "1"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, decodeResult(t, w).Error)
	})

	t.Run("Sign JWT", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/sign-jwt", methods.SignJWTParams{ExpiresSeconds: 600})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeResult(t, w).Error)
		assert.NotEmpty(t, ts.svc.State().SignedJWT)
	})

	t.Run("Wallet actions", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/switch-to-group", SwitchToGroupRequest{GroupPolicyAddress: "tp1group"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeResult(t, w).Error)

		w = ts.do(t, http.MethodPost, "/api/v1/remove-pending-method", RemovePendingMethodRequest{CustomID: "pay-1"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decodeResult(t, w).Error)
	})

	t.Run("Reset timeout", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/reset-timeout", ResetTimeoutRequest{Seconds: 120})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(120_000), ts.svc.State().ConnectionTimeout)
	})

	t.Run("Journal lists the requests", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/v1/journal?status=success&limit=10", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		var response struct {
			Data []store.RequestRecord `json:"data"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.NotEmpty(t, response.Data)
		for _, r := range response.Data {
			assert.Equal(t, journal.StatusSuccess, r.Status)
		}

		w = ts.do(t, http.MethodGet, "/api/v1/journal/pay-1", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.NotEmpty(t, response.Data)
	})

	t.Run("Disconnect", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/v1/disconnect", DisconnectRequest{Message: "bye"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, types.StatusDisconnected, ts.svc.State().Status)
	})
}

func TestHandleUpdateModal(t *testing.T) {
	ts := newTestServer(t)
	show := true
	url := "wc:abc"

	w := ts.do(t, http.MethodPost, "/api/v1/modal", types.ModalUpdate{ShowModal: &show, QRCodeURL: &url})
	assert.Equal(t, http.StatusOK, w.Code)

	modal := ts.svc.State().Modal
	assert.True(t, modal.ShowModal)
	assert.Equal(t, url, modal.QRCodeURL)
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"Malformed JSON", http.MethodPost, "/api/v1/connect", "{", http.StatusBadRequest},
		{"Send message without messages", http.MethodPost, "/api/v1/send-message", `{"description":"x"}`, http.StatusBadRequest},
		{"Send message with a numeric message", http.MethodPost, "/api/v1/send-message", `{"message":5}`, http.StatusBadRequest},
		{"Sign without a message", http.MethodPost, "/api/v1/sign-hex-message", `{"description":"x"}`, http.StatusBadRequest},
		{"Remove without custom id", http.MethodPost, "/api/v1/remove-pending-method", `{}`, http.StatusBadRequest},
		{"Negative reset timeout", http.MethodPost, "/api/v1/reset-timeout", `{"seconds":-1}`, http.StatusBadRequest},
		{"Invalid journal limit", http.MethodGet, "/api/v1/journal?limit=abc", "", http.StatusBadRequest},
		{"Unknown custom id", http.MethodGet, "/api/v1/journal/missing", "", http.StatusNotFound},
		{"Wrong method", http.MethodGet, "/api/v1/connect", "", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			ts.server.Handler().ServeHTTP(w, req)

			assert.Equal(t, tc.code, w.Code)
			if tc.code != http.StatusMethodNotAllowed {
				var response ErrorResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.NotEmpty(t, response.Error)
			}
		})
	}
}

func TestJournalDisabled(t *testing.T) {
	ts := newTestServer(t)
	server := NewServer(zerolog.Nop(), 0, ts.svc, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/journal", nil)
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsRoute(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/api/v1/connect", methods.ConnectParams{})

	w := ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pwallet_")
}
