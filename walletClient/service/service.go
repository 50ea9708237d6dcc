// Package service is the session orchestrator. A Service owns the
// authoritative session state, the transport connector and the connection
// timer, and keeps them consistent with the two persisted storage
// namespaces, including writes made by other instances sharing the storage.
package service

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pushchain/push-wallet-connect/walletClient/accounts"
	"github.com/pushchain/push-wallet-connect/walletClient/config"
	"github.com/pushchain/push-wallet-connect/walletClient/events"
	"github.com/pushchain/push-wallet-connect/walletClient/journal"
	"github.com/pushchain/push-wallet-connect/walletClient/metrics"
	"github.com/pushchain/push-wallet-connect/walletClient/reconciler"
	"github.com/pushchain/push-wallet-connect/walletClient/storage"
	"github.com/pushchain/push-wallet-connect/walletClient/timer"
	"github.com/pushchain/push-wallet-connect/walletClient/transport"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
	"github.com/pushchain/push-wallet-connect/walletClient/wallets"
)

// Options are the collaborators of a Service. Mirror and Factory are
// required.
type Options struct {
	Config  config.Config
	Mirror  *storage.Mirror
	Factory transport.Factory

	Clock    clock.Clock
	Notifier wallets.Notifier
	// Journal, if set, records every wallet request.
	Journal *journal.Store
	Metrics *metrics.Metrics
	// NextID overrides the random JSON-RPC request id source.
	NextID func() int64
	Logger zerolog.Logger
}

// Service is one session client instance.
type Service struct {
	cfg      config.Config
	mirror   *storage.Mirror
	factory  transport.Factory
	clock    clock.Clock
	notifier wallets.Notifier
	journal  *journal.Store
	metrics  *metrics.Metrics
	nextID   func() int64
	logger   zerolog.Logger

	broadcaster *events.Broadcaster
	timer       *timer.ConnectionTimer
	reconciler  *reconciler.Reconciler

	mu        sync.Mutex
	state     types.State
	connector transport.Connector
	// generation changes on every connect and every disconnect. Work
	// started under an older generation must not touch the current state.
	generation    string
	unsubscribe   func()
	updateContext func(types.State)
}

// New builds the initial state from storage, restores the connector of a
// persisted session and starts watching storage for foreign writes.
func New(opts Options) (*Service, error) {
	if opts.Mirror == nil {
		return nil, errors.New("storage mirror is required")
	}
	if opts.Factory == nil {
		return nil, errors.New("connector factory is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	logger := opts.Logger.With().Str("component", "session_service").Logger()
	if opts.Notifier == nil {
		opts.Notifier = wallets.NewLogNotifier(opts.Logger)
	}

	s := &Service{
		cfg:         opts.Config,
		mirror:      opts.Mirror,
		factory:     opts.Factory,
		clock:       opts.Clock,
		notifier:    opts.Notifier,
		journal:     opts.Journal,
		metrics:     opts.Metrics,
		nextID:      opts.NextID,
		logger:      logger,
		broadcaster: events.NewBroadcaster(),
		generation:  uuid.NewString(),
	}
	s.timer = timer.New(s.clock, opts.Logger, s.expire)
	s.reconciler = reconciler.New(s.mirror.Watcher(), opts.Logger, s.rederive)

	s.state = s.buildInitialState()
	s.metrics.Status(s.state.Status)

	if s.state.Status == types.StatusPending {
		connector, err := s.factory(transport.Options{Bridge: s.state.Bridge, Mirror: s.mirror, Logger: opts.Logger})
		if err != nil {
			logger.Warn().Err(err).Msg("failed to restore connector from storage")
		} else {
			s.connector = connector
			logger.Info().Str("address", s.state.Address).Msg("restored session from storage")
		}
	}

	s.reconciler.Start()
	return s, nil
}

// Close stops watching storage and cancels the connection timer. The
// persisted session is left in place.
func (s *Service) Close() {
	s.reconciler.Stop()
	s.mu.Lock()
	s.timer.Clear()
	s.mu.Unlock()
}

// State returns a copy of the current session state.
func (s *Service) State() types.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SetContextUpdater registers fn to receive every new state.
func (s *Service) SetContextUpdater(fn func(types.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateContext = fn
}

// AddListener subscribes l to the named event and returns the id to remove
// it with. Unknown names return an empty id.
func (s *Service) AddListener(name events.Name, l events.Listener) string {
	return s.broadcaster.AddListener(name, l)
}

// RemoveListener drops the listener with id.
func (s *Service) RemoveListener(id string) bool {
	return s.broadcaster.RemoveListener(id)
}

// Metrics returns the collectors of s.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// Journal returns the request journal, or nil when none is wired.
func (s *Service) Journal() *journal.Store {
	return s.journal
}

func (s *Service) defaultState() types.State {
	return types.State{
		Status:            types.StatusDisconnected,
		Bridge:            s.cfg.Bridge,
		ConnectionTimeout: int64(s.cfg.ConnectionTimeoutSeconds) * 1000,
	}
}

func (s *Service) buildInitialState() types.State {
	ts, ok := s.mirror.ReadTransport()
	return deriveState(s.defaultState(), ts, ok, s.mirror.ReadService())
}

// deriveState re-derives cur from the persisted namespaces. Storage is
// authoritative for whether the transport session still exists, so a
// missing or disconnected transport blob always yields disconnected.
// Other fields take the persisted value when present and keep cur
// otherwise.
func deriveState(cur types.State, ts storage.TransportSession, tsOK bool, svc storage.ServiceState) types.State {
	next := cur.Clone()

	storageConnected := tsOK && ts.Connected
	switch {
	case !storageConnected:
		next.Status = types.StatusDisconnected
	case cur.Status == types.StatusConnected:
		next.Status = types.StatusConnected
	default:
		next.Status = types.StatusPending
	}

	if len(ts.Accounts) > 0 {
		next = next.WithAccount(accounts.Resolve(ts.Accounts))
	}
	if ts.PeerMeta != nil {
		peer := *ts.PeerMeta
		next.Peer = &peer
	}
	if ts.Bridge != "" {
		next.Bridge = ts.Bridge
	} else if svc.Bridge != "" {
		next.Bridge = svc.Bridge
	}

	if svc.SignedJWT != "" {
		next.SignedJWT = svc.SignedJWT
	}
	if svc.ConnectionTimeout > 0 {
		next.ConnectionTimeout = svc.ConnectionTimeout
	}
	if svc.ConnectionEST > 0 {
		next.ConnectionEST = svc.ConnectionEST
	}
	if svc.ConnectionEXP > 0 {
		next.ConnectionEXP = svc.ConnectionEXP
	}
	if svc.WalletAppID != "" {
		next.WalletAppID = svc.WalletAppID
	}
	return next
}

// persistLocked writes the service-owned fields of the current state. The
// connect-time options already in the namespace are kept. A disconnected
// service owns no namespace and writes nothing.
func (s *Service) persistLocked() {
	if s.state.Status == types.StatusDisconnected {
		return
	}
	svc := s.mirror.ReadService()
	svc.ConnectionEXP = s.state.ConnectionEXP
	svc.ConnectionEST = s.state.ConnectionEST
	svc.ConnectionTimeout = s.state.ConnectionTimeout
	svc.SignedJWT = s.state.SignedJWT
	svc.WalletAppID = s.state.WalletAppID
	if err := s.mirror.WriteService(svc); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist service state")
	}
}

// setState is the single state merge path. With persist set the service
// namespace is rewritten from the new state.
func (s *Service) setState(update func(types.State) types.State, persist bool) types.State {
	s.mu.Lock()
	s.state = update(s.state.Clone())
	if persist {
		s.persistLocked()
	}
	snap := s.state.Clone()
	fn := s.updateContext
	s.mu.Unlock()

	s.publish(fn, snap)
	return snap
}

func (s *Service) publish(fn func(types.State), snap types.State) {
	s.metrics.Status(snap.Status)
	if fn != nil {
		fn(snap)
	}
}

func (s *Service) broadcast(name events.Name, res *types.Result, snap types.State, message string) {
	n := s.broadcaster.Broadcast(events.Payload{Name: name, Result: res, State: snap, Message: message})
	s.logger.Debug().Str("event", string(name)).Int("listeners", n).Msg("broadcast")
}

// dropConnectorLocked forgets the connector and starts a new generation, so
// events and results still in flight on the old connector are ignored. The
// returned function detaches the old subscription and must be called
// without s.mu held.
func (s *Service) dropConnectorLocked() func() {
	unsubscribe := s.unsubscribe
	s.connector = nil
	s.unsubscribe = nil
	s.generation = uuid.NewString()
	if unsubscribe == nil {
		return func() {}
	}
	return unsubscribe
}

// rederive re-reads both namespaces after a foreign write. It never writes
// storage back.
func (s *Service) rederive(change reconciler.Change) {
	s.metrics.Rederive(change.Key)
	ts, ok := s.mirror.ReadTransport()
	svc := s.mirror.ReadService()

	s.mu.Lock()
	connector := s.connector
	s.mu.Unlock()
	// A connector of our own that is still waiting for the wallet has not
	// written the transport namespace yet.
	awaiting := connector != nil && !connector.Connected()

	s.mu.Lock()
	prev := s.state
	next := deriveState(prev, ts, ok, svc)

	var (
		lost         bool
		onDisconnect func(string)
		detach       = func() {}
	)
	switch {
	case prev.Status == types.StatusConnected && next.Status == types.StatusDisconnected:
		// The session was ended elsewhere.
		lost = true
		onDisconnect = prev.OnDisconnect
		detach = s.dropConnectorLocked()
		s.timer.Clear()
		next = s.defaultState()
	case prev.Status == types.StatusPending && next.Status == types.StatusDisconnected &&
		awaiting && s.connector == connector:
		next.Status = types.StatusPending
	case prev.Status != types.StatusDisconnected && next.Status == types.StatusDisconnected:
		detach = s.dropConnectorLocked()
		next = s.defaultState()
	case next.Status == types.StatusConnected && next.ConnectionEXP != prev.ConnectionEXP:
		// Another instance refreshed the timeout.
		s.timer.Restart(next.ConnectionEST, next.ConnectionEXP)
	}
	s.state = next
	snap := s.state.Clone()
	fn := s.updateContext
	s.mu.Unlock()
	detach()

	s.logger.Info().
		Str("key", change.Key).
		Strs("fields", change.Fields).
		Str("status", string(snap.Status)).
		Msg("state re-derived from storage")
	s.publish(fn, snap)

	if lost {
		s.metrics.Disconnect(metrics.ReasonStorage)
		if onDisconnect != nil {
			onDisconnect("")
		}
		s.broadcast(events.Disconnect, nil, snap, "")
	}
}
