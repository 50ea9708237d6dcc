package api

import (
	"context"

	"github.com/pushchain/push-wallet-connect/walletClient/methods"
	"github.com/pushchain/push-wallet-connect/walletClient/service"
	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// SessionService defines the methods needed by the API server
type SessionService interface {
	State() types.State
	Connect(ctx context.Context, p methods.ConnectParams) types.Result
	Disconnect(ctx context.Context, message string) string
	SendMessage(ctx context.Context, p methods.SendMessageParams) types.Result
	SendCoin(ctx context.Context, p service.SendCoinParams) types.Result
	Delegate(ctx context.Context, p service.DelegateParams) types.Result
	SwitchToGroup(ctx context.Context, groupPolicyAddress, description string) types.Result
	SignJWT(ctx context.Context, p methods.SignJWTParams) types.Result
	SignHexMessage(ctx context.Context, p methods.SignHexMessageParams) types.Result
	RemovePendingMethod(ctx context.Context, customID string) types.Result
	UpdateModal(u types.ModalUpdate) types.State
	ResetConnectionTimeout(seconds int64) types.State
}

var _ SessionService = (*service.Service)(nil)
