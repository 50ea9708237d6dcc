package service

import (
	"context"

	"github.com/pushchain/push-wallet-connect/walletClient/events"
	"github.com/pushchain/push-wallet-connect/walletClient/methods"
	"github.com/pushchain/push-wallet-connect/walletClient/metrics"
	"github.com/pushchain/push-wallet-connect/walletClient/transport"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
	"github.com/pushchain/push-wallet-connect/walletClient/wallets"
)

// session binds connector callbacks to the generation that created the
// connector. Callbacks from a replaced connector are dropped.
type session struct {
	s   *Service
	gen string
}

var _ methods.Session = session{}

func (a session) Snapshot() types.State {
	return a.s.State()
}

func (a session) Merge(update func(types.State) types.State) {
	if !a.s.current(a.gen) {
		return
	}
	a.s.setState(update, false)
}

func (a session) Connected(event transport.EventName, acct types.Account, peer *types.PeerMeta, durationSeconds int64) {
	a.s.connected(a.gen, event, acct, peer, durationSeconds)
}

func (a session) Disconnected(message string) {
	if !a.s.current(a.gen) {
		a.s.logger.Debug().Msg("ignoring disconnect from a replaced connector")
		return
	}
	a.s.teardown(context.Background(), message, metrics.ReasonTransport, false)
}

func (s *Service) current(gen string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation == gen
}

// Connect starts a session, or restores the persisted one, and returns the
// connect result. It does nothing when already connected.
func (s *Service) Connect(ctx context.Context, p methods.ConnectParams) types.Result {
	s.mu.Lock()
	if s.state.Status == types.StatusConnected {
		s.mu.Unlock()
		return types.Result{Data: p}
	}
	// A connector left over from an earlier attempt is replaced.
	detach := s.dropConnectorLocked()
	gen := s.generation
	s.mu.Unlock()
	detach()

	env := methods.ConnectEnv{
		Session: session{s: s, gen: gen},
		Mirror:  s.mirror,
		// The connector is adopted before Connect subscribes to it, so
		// listeners of the first CONNECTED can already dispatch.
		Factory: func(o transport.Options) (transport.Connector, error) {
			c, err := s.factory(o)
			if err != nil {
				return nil, err
			}
			s.mu.Lock()
			if s.generation == gen {
				s.connector = c
			}
			s.mu.Unlock()
			return c, nil
		},
		DefaultBridge:  s.cfg.Bridge,
		DefaultTimeout: int64(s.cfg.ConnectionTimeoutSeconds),
		OnSubscribe: func(unsubscribe func()) {
			s.mu.Lock()
			if s.generation == gen {
				s.unsubscribe, unsubscribe = unsubscribe, nil
			}
			s.mu.Unlock()
			if unsubscribe != nil {
				unsubscribe()
			}
		},
		Logger: s.logger,
	}
	connector, res := methods.Connect(ctx, env, p)

	if res.Failed() {
		s.logger.Error().Str("error", res.Error).Msg("connect failed")
		connectorConnected := connector != nil && connector.Connected()
		detach := func() {}
		s.mu.Lock()
		if s.generation == gen && !connectorConnected {
			detach = s.dropConnectorLocked()
			s.state.Status = types.StatusDisconnected
		}
		snap := s.state.Clone()
		fn := s.updateContext
		s.mu.Unlock()
		detach()
		s.publish(fn, snap)
	}
	return res
}

// Init is an alias of Connect.
func (s *Service) Init(ctx context.Context, p methods.ConnectParams) types.Result {
	return s.Connect(ctx, p)
}

// connected marks the session connected with acct and starts a fresh
// inactivity window of durationSeconds.
func (s *Service) connected(gen string, event transport.EventName, acct types.Account, peer *types.PeerMeta, durationSeconds int64) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug().Str("event", string(event)).Msg("ignoring event from a replaced connector")
		return
	}
	now := s.clock.Now().UnixMilli()
	st := s.state.WithAccount(acct)
	st.Status = types.StatusConnected
	if peer != nil {
		st.Peer = peer
	}
	st.ConnectionTimeout = durationSeconds * 1000
	st.ConnectionEST = now
	st.ConnectionEXP = now + st.ConnectionTimeout
	st.Modal.ShowModal = false
	s.state = st
	s.persistLocked()
	s.timer.Restart(st.ConnectionEST, st.ConnectionEXP)
	snap := s.state.Clone()
	fn := s.updateContext
	s.mu.Unlock()

	s.logger.Info().
		Str("event", string(event)).
		Str("address", snap.Address).
		Int64("exp", snap.ConnectionEXP).
		Msg("wallet connected")
	s.publish(fn, snap)
	s.broadcast(events.Connected, nil, snap, "")
}

// Disconnect ends the session: the timer is cleared, the service namespace
// removed, the connector killed and onDisconnect run once. DISCONNECT is
// broadcast even if no session was active.
func (s *Service) Disconnect(ctx context.Context, message string) string {
	s.teardown(ctx, message, metrics.ReasonExplicit, true)
	return message
}

func (s *Service) expire() {
	s.logger.Info().Msg("session timed out")
	s.teardown(context.Background(), "", metrics.ReasonTimeout, true)
}

func (s *Service) teardown(ctx context.Context, message, reason string, kill bool) {
	s.mu.Lock()
	connector := s.connector
	onDisconnect := s.state.OnDisconnect
	detach := s.dropConnectorLocked()
	s.timer.Clear()
	s.state = s.defaultState()
	if err := s.mirror.ClearService(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to clear service storage")
	}
	snap := s.state.Clone()
	fn := s.updateContext
	s.mu.Unlock()
	detach()

	// The connector's own disconnect event belongs to the old generation
	// and is ignored.
	if kill && connector != nil {
		if err := connector.KillSession(ctx, message); err != nil {
			s.logger.Warn().Err(err).Msg("failed to kill transport session")
		}
	}

	s.metrics.Disconnect(reason)
	s.logger.Info().Str("reason", reason).Str("message", message).Msg("wallet disconnected")
	if onDisconnect != nil {
		onDisconnect(message)
	}
	s.publish(fn, snap)
	s.broadcast(events.Disconnect, nil, snap, message)
}

// ResetConnectionTimeout starts a new inactivity window of seconds, or of
// the current timeout when seconds is zero, and tells the active wallet
// app about it.
func (s *Service) ResetConnectionTimeout(seconds int64) types.State {
	s.mu.Lock()
	timeout := s.state.ConnectionTimeout
	if seconds > 0 {
		timeout = seconds * 1000
	}
	s.state.ConnectionTimeout = timeout
	s.state.ConnectionEXP = s.clock.Now().UnixMilli() + timeout
	s.persistLocked()
	s.timer.Restart(s.state.ConnectionEST, s.state.ConnectionEXP)
	walletAppID := s.state.WalletAppID
	snap := s.state.Clone()
	fn := s.updateContext
	s.mu.Unlock()

	if walletAppID != "" {
		wallets.Notify(s.notifier, walletAppID, wallets.Event{
			Event:   wallets.EventResetTimeout,
			Timeout: timeout,
		})
	}
	s.publish(fn, snap)
	return snap
}

// UpdateModal merges u into the modal state. Closing the modal while a
// connection is still pending, with no wallet app targeted, abandons the
// connection attempt.
func (s *Service) UpdateModal(u types.ModalUpdate) types.State {
	s.mu.Lock()
	connector := s.connector
	s.mu.Unlock()
	connectorConnected := connector != nil && connector.Connected()

	closing := u.ShowModal == nil || !*u.ShowModal
	return s.setState(func(st types.State) types.State {
		st.Modal = u.Apply(st.Modal)
		if closing && st.Status == types.StatusPending && !connectorConnected && u.WalletAppID == "" {
			st.Status = types.StatusDisconnected
		}
		if u.WalletAppID != "" {
			st.WalletAppID = u.WalletAppID
		}
		return st
	}, true)
}
