package methods

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/pushchain/push-wallet-connect/walletClient/accounts"
	walleterrors "github.com/pushchain/push-wallet-connect/walletClient/errors"
	"github.com/pushchain/push-wallet-connect/walletClient/storage"
	"github.com/pushchain/push-wallet-connect/walletClient/transport"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// ConnectParams are the caller's connect options. Zero values mean "use the
// default".
type ConnectParams struct {
	Bridge string `json:"bridge,omitempty"`
	// DurationSeconds is the inactivity timeout for this session.
	DurationSeconds   int64  `json:"duration,omitempty"`
	IndividualAddress string `json:"individualAddress,omitempty"`
	GroupAddress      string `json:"groupAddress,omitempty"`
	ProhibitGroups    bool   `json:"prohibitGroups,omitempty"`
	JWTExpiration     int64  `json:"jwtExpiration,omitempty"`
	// WalletAppID targets a known wallet directly instead of showing a QR code.
	WalletAppID    string `json:"walletAppId,omitempty"`
	IframeParentID string `json:"iframeParentId,omitempty"`

	OnDisconnect func(message string) `json:"-"`
}

// Session is what the connect dispatcher drives on the orchestrator side.
type Session interface {
	Snapshot() types.State
	// Merge applies update through the orchestrator's single state path.
	Merge(update func(types.State) types.State)
	// Connected runs for connect and session_update events, and immediately
	// when a restored connector is already connected.
	Connected(event transport.EventName, acct types.Account, peer *types.PeerMeta, durationSeconds int64)
	Disconnected(message string)
}

// ConnectEnv carries the collaborators of Connect.
type ConnectEnv struct {
	Session        Session
	Mirror         *storage.Mirror
	Factory        transport.Factory
	DefaultBridge  string
	DefaultTimeout int64 // seconds
	// OnSubscribe, if set, receives the function that detaches the session
	// from the connector's events.
	OnSubscribe func(unsubscribe func())
	Logger      zerolog.Logger
}

// EffectiveDuration picks the session duration in seconds: the explicit
// value, else the persisted timeout, else the default. It never looks at the
// persisted expiry, so an expired session restores with a full duration.
func EffectiveDuration(explicit int64, persisted storage.ServiceState, fallback int64) int64 {
	switch {
	case explicit > 0:
		return explicit
	case persisted.ConnectionTimeout > 0:
		return persisted.ConnectionTimeout / 1000
	default:
		return fallback
	}
}

// Connect creates a connector and subscribes the session to its lifecycle.
// It returns a nil connector when the session is already connected.
func Connect(ctx context.Context, env ConnectEnv, p ConnectParams) (transport.Connector, types.Result) {
	res := types.Result{Data: p}
	logger := env.Logger.With().Str("method", types.PendingConnect).Logger()

	if env.Session.Snapshot().Status == types.StatusConnected {
		logger.Debug().Msg("already connected")
		return nil, res
	}

	persisted := env.Mirror.ReadService()
	duration := EffectiveDuration(p.DurationSeconds, persisted, env.DefaultTimeout)

	bridge := p.Bridge
	if bridge == "" {
		bridge = persisted.Bridge
	}
	if bridge == "" {
		bridge = env.DefaultBridge
	}

	if p.Bridge != "" || p.IframeParentID != "" {
		if p.Bridge != "" {
			persisted.Bridge = p.Bridge
		}
		if p.IframeParentID != "" {
			persisted.IframeParentID = p.IframeParentID
		}
		if err := env.Mirror.WriteService(persisted); err != nil {
			logger.Warn().Err(err).Msg("failed to persist connect options")
		}
	}

	env.Session.Merge(func(s types.State) types.State {
		s.Status = types.StatusPending
		s.Bridge = bridge
		s.ConnectionTimeout = duration * 1000
		if p.WalletAppID != "" {
			s.WalletAppID = p.WalletAppID
		}
		if p.OnDisconnect != nil {
			s.OnDisconnect = p.OnDisconnect
		}
		return s
	})

	connector, err := env.Factory(transport.Options{Bridge: bridge, Mirror: env.Mirror, Logger: env.Logger})
	if err != nil {
		res.Error = walleterrors.NewTransportError(types.PendingConnect, "failed to create connector", err).Error()
		return nil, res
	}

	unsubscribe := subscribe(connector, env.Session, duration, logger)
	if env.OnSubscribe != nil {
		env.OnSubscribe(unsubscribe)
	}

	if connector.Connected() {
		env.Session.Connected(transport.EventSessionUpdate, accounts.Resolve(connector.Accounts()), connector.PeerMeta(), duration)
		res.Valid = true
		return connector, res
	}

	err = connector.CreateSession(ctx, transport.SessionOptions{
		WalletAppID:       p.WalletAppID,
		IndividualAddress: p.IndividualAddress,
		GroupAddress:      p.GroupAddress,
		ProhibitGroups:    p.ProhibitGroups,
		JWTExpiration:     p.JWTExpiration,
	})
	if err != nil {
		res.Error = err.Error()
		return connector, res
	}

	if !connector.Connected() {
		uri := connector.URI()
		env.Session.Merge(func(s types.State) types.State {
			if p.WalletAppID != "" {
				s.Modal.ShowModal = false
				s.Modal.WalletAppID = p.WalletAppID
			} else {
				s.Modal.ShowModal = true
				s.Modal.QRCodeURL = uri
				s.Modal.DynamicURL = uri
			}
			return s
		})
	}
	res.Valid = true
	return connector, res
}

// subscribe wires connector events to the session and returns the function
// that removes them again. Errors delivered with an event are logged and the
// event is dropped.
func subscribe(connector transport.Connector, session Session, duration int64, logger zerolog.Logger) func() {
	update := func(event transport.EventName) transport.Handler {
		return func(err error, payload transport.Payload) {
			if err != nil {
				logger.Error().Err(err).Str("event", string(event)).Msg("transport event error")
				return
			}
			raw := payload.Accounts
			if len(raw) == 0 {
				raw = connector.Accounts()
			}
			peer := payload.PeerMeta
			if peer == nil {
				peer = connector.PeerMeta()
			}
			session.Connected(event, accounts.Resolve(raw), peer, duration)
		}
	}
	offs := []func(){
		connector.On(transport.EventSessionUpdate, update(transport.EventSessionUpdate)),
		connector.On(transport.EventConnect, update(transport.EventConnect)),
		connector.On(transport.EventDisconnect, func(err error, payload transport.Payload) {
			if err != nil {
				logger.Error().Err(err).Str("event", string(transport.EventDisconnect)).Msg("transport event error")
				return
			}
			session.Disconnected(payload.Message)
		}),
	}
	return func() {
		for _, off := range offs {
			if off != nil {
				off()
			}
		}
	}
}
