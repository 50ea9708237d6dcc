package service

import (
	"context"
	"fmt"

	"github.com/pushchain/push-wallet-connect/walletClient/encoding"
	walleterrors "github.com/pushchain/push-wallet-connect/walletClient/errors"
	"github.com/pushchain/push-wallet-connect/walletClient/events"
	"github.com/pushchain/push-wallet-connect/walletClient/journal"
	"github.com/pushchain/push-wallet-connect/walletClient/methods"
	"github.com/pushchain/push-wallet-connect/walletClient/metrics"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// call describes one wallet method dispatch.
type call struct {
	method       string
	walletMethod string
	customID     string
	params       any
	run          func(methods.Env) types.Result
	// merge, if set, folds a successful result into the state. Its return
	// value says whether the service namespace must be rewritten.
	merge func(types.State, types.Result) (types.State, bool)
}

// dispatch runs c with the four step pattern: mark the method pending, run
// the dispatcher outside the lock, clear the mark, broadcast the outcome
// and refresh the inactivity timer. A result that comes back after the
// session was replaced is returned to the caller and nothing else.
func (s *Service) dispatch(ctx context.Context, c call) types.Result {
	s.mu.Lock()
	gen := s.generation
	s.state.PendingMethod = c.method
	env := methods.Env{
		Connector:   s.connector,
		Address:     s.state.Address,
		PublicKey:   s.state.PublicKey,
		WalletAppID: s.state.WalletAppID,
		Notifier:    s.notifier,
		Clock:       s.clock,
		NextID:      s.nextID,
		Logger:      s.logger.With().Str("method", c.method).Logger(),
	}
	snap := s.state.Clone()
	fn := s.updateContext
	s.mu.Unlock()
	s.publish(fn, snap)

	recordID := s.journalBegin(ctx, c, env.Address, gen)
	res := c.run(env)

	s.mu.Lock()
	stale := s.generation != gen
	if !stale {
		s.state.PendingMethod = ""
		if c.merge != nil && !res.Failed() {
			var persist bool
			s.state, persist = c.merge(s.state.Clone(), res)
			if persist {
				s.persistLocked()
			}
		}
	}
	snap = s.state.Clone()
	fn = s.updateContext
	s.mu.Unlock()

	if stale {
		s.logger.Warn().Str("method", c.method).Msg("dropping result of a replaced session")
		s.metrics.Dispatch(c.method, metrics.OutcomeStale)
		s.journalFinish(ctx, recordID, journal.StatusStale, res)
		return res
	}

	s.publish(fn, snap)
	outcome, status := metrics.OutcomeComplete, journal.StatusSuccess
	if res.Failed() {
		outcome, status = metrics.OutcomeFailed, journal.StatusFailed
	}
	s.metrics.Dispatch(c.method, outcome)
	s.journalFinish(ctx, recordID, status, res)

	if name, ok := events.Outcome(c.method, res.Failed()); ok {
		r := res
		s.broadcast(name, &r, snap, "")
	}
	s.ResetConnectionTimeout(0)
	return res
}

func (s *Service) journalBegin(ctx context.Context, c call, address, gen string) uint {
	if s.journal == nil {
		return 0
	}
	id, err := s.journal.Begin(ctx, journal.Entry{
		Method:       c.method,
		WalletMethod: c.walletMethod,
		CustomID:     c.customID,
		Address:      address,
		Generation:   gen,
		Params:       c.params,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("method", c.method).Msg("failed to journal request")
		return 0
	}
	return id
}

func (s *Service) journalFinish(ctx context.Context, id uint, status string, res types.Result) {
	if s.journal == nil || id == 0 {
		return
	}
	o := journal.Outcome{Status: status, Result: res.Result, ErrorMsg: res.Error}
	if res.Request != nil {
		o.RequestID = res.Request.ID
	}
	if err := s.journal.Finish(ctx, id, o); err != nil {
		s.logger.Warn().Err(err).Uint("record_id", id).Msg("failed to finish journal record")
	}
}

// SendMessage asks the wallet to sign and broadcast base64 encoded Any
// messages.
func (s *Service) SendMessage(ctx context.Context, p methods.SendMessageParams) types.Result {
	walletMethod := p.Method
	if walletMethod == "" {
		walletMethod = types.WalletMethodSendTransaction
	}
	return s.dispatch(ctx, call{
		method:       types.PendingSendMessage,
		walletMethod: walletMethod,
		customID:     p.CustomID,
		params:       p,
		run: func(env methods.Env) types.Result {
			return methods.SendMessage(ctx, env, p)
		},
	})
}

// SendCoinParams describe a bank transfer from the connected account.
type SendCoinParams struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
	// Denom defaults to hash, which is sent as nhash.
	Denom    string          `json:"denom,omitempty"`
	GasPrice *types.GasPrice `json:"gasPrice,omitempty"`
	Memo     string          `json:"memo,omitempty"`
	CustomID string          `json:"customId,omitempty"`
}

// SendCoin builds a MsgSend and sends it through SendMessage.
func (s *Service) SendCoin(ctx context.Context, p SendCoinParams) types.Result {
	if err := encoding.ValidateAddress(p.To, s.cfg.Bech32Prefix); err != nil {
		return types.Result{Data: p, Error: walleterrors.Message(err)}
	}
	coin, err := encoding.NormalizeCoin(p.Amount, p.Denom)
	if err != nil {
		return types.Result{Data: p, Error: walleterrors.Message(err)}
	}
	msg, err := encoding.AnyBase64(encoding.MsgSend(s.State().Address, p.To, coin))
	if err != nil {
		return types.Result{Data: p, Error: walleterrors.Message(err)}
	}
	return s.SendMessage(ctx, methods.SendMessageParams{
		Messages:    methods.Message(msg),
		Description: fmt.Sprintf("Send Coin (%s)", coin.Denom),
		GasPrice:    s.gasPrice(p.GasPrice),
		Memo:        p.Memo,
		CustomID:    p.CustomID,
	})
}

// DelegateParams describe a staking delegation from the connected account.
type DelegateParams struct {
	Validator string          `json:"validator"`
	Amount    string          `json:"amount"`
	Denom     string          `json:"denom,omitempty"`
	GasPrice  *types.GasPrice `json:"gasPrice,omitempty"`
	CustomID  string          `json:"customId,omitempty"`
}

// Delegate builds a MsgDelegate and sends it through SendMessage.
func (s *Service) Delegate(ctx context.Context, p DelegateParams) types.Result {
	if err := encoding.ValidateAddress(p.Validator, s.cfg.Bech32Prefix+"valoper"); err != nil {
		return types.Result{Data: p, Error: walleterrors.Message(err)}
	}
	coin, err := encoding.NormalizeCoin(p.Amount, p.Denom)
	if err != nil {
		return types.Result{Data: p, Error: walleterrors.Message(err)}
	}
	msg, err := encoding.AnyBase64(encoding.MsgDelegate(s.State().Address, p.Validator, coin))
	if err != nil {
		return types.Result{Data: p, Error: walleterrors.Message(err)}
	}
	return s.SendMessage(ctx, methods.SendMessageParams{
		Messages:    methods.Message(msg),
		Description: fmt.Sprintf("Delegate (%s)", coin.Denom),
		GasPrice:    s.gasPrice(p.GasPrice),
		CustomID:    p.CustomID,
	})
}

func (s *Service) gasPrice(p *types.GasPrice) *types.GasPrice {
	if p != nil {
		return p
	}
	if s.cfg.DefaultGasPrice.GasPriceDenom == "" {
		return nil
	}
	gp := s.cfg.DefaultGasPrice
	return &gp
}

// SwitchToGroup makes the wallet act as groupPolicyAddress, or as the
// individual account when it is empty.
func (s *Service) SwitchToGroup(ctx context.Context, groupPolicyAddress, description string) types.Result {
	p := methods.SwitchToGroup(groupPolicyAddress, description)
	return s.dispatch(ctx, call{
		method:       types.PendingSwitchToGroup,
		walletMethod: types.WalletMethodAction,
		params:       p,
		run: func(env methods.Env) types.Result {
			return methods.SendWalletAction(ctx, env, p)
		},
	})
}

// SignJWT asks the wallet for a JWT that expires in p.ExpiresSeconds. A
// returned token replaces the signed JWT in state and storage.
func (s *Service) SignJWT(ctx context.Context, p methods.SignJWTParams) types.Result {
	if p.ExpiresSeconds <= 0 {
		p.ExpiresSeconds = int64(s.cfg.JWTExpirationSeconds)
	}
	return s.dispatch(ctx, call{
		method:       types.PendingSignJWT,
		walletMethod: types.WalletMethodSignJWT,
		customID:     p.CustomID,
		params:       p,
		run: func(env methods.Env) types.Result {
			return methods.SignJWT(ctx, env, p)
		},
		merge: func(st types.State, res types.Result) (types.State, bool) {
			token, ok := methods.SignedJWT(res)
			if !ok {
				return st, false
			}
			st.SignedJWT = token
			return st, true
		},
	})
}

// SignHexMessage asks the wallet to sign an already hex encoded message.
func (s *Service) SignHexMessage(ctx context.Context, p methods.SignHexMessageParams) types.Result {
	return s.dispatch(ctx, call{
		method:       types.PendingSignHexMessage,
		walletMethod: types.WalletMethodSign,
		customID:     p.CustomID,
		params:       p,
		run: func(env methods.Env) types.Result {
			return methods.SignHexMessage(ctx, env, p)
		},
	})
}

// RemovePendingMethod asks the wallet to drop the queued request tagged
// customID.
func (s *Service) RemovePendingMethod(ctx context.Context, customID string) types.Result {
	p := methods.RemovePendingMethod(customID)
	return s.dispatch(ctx, call{
		method:       types.PendingRemovePendingMethod,
		walletMethod: types.WalletMethodAction,
		customID:     customID,
		params:       p,
		run: func(env methods.Env) types.Result {
			return methods.SendWalletAction(ctx, env, p)
		},
	})
}
