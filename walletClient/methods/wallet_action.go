package methods

import (
	"context"

	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

// WalletActionParams is a control-plane request that is not a transaction.
type WalletActionParams struct {
	Action      string `json:"action"`
	Payload     any    `json:"payload,omitempty"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method,omitempty"`
	CustomID    string `json:"customId,omitempty"`
}

type walletActionMetadata struct {
	Action      string `json:"action"`
	Payload     any    `json:"payload,omitempty"`
	Description string `json:"description,omitempty"`
	Date        int64  `json:"date"`
}

// SendWalletAction sends a wallet_action request with p.Payload in the
// metadata. The params carry only the metadata.
func SendWalletAction(ctx context.Context, env Env, p WalletActionParams) types.Result {
	method := p.Method
	if method == "" {
		method = types.WalletMethodAction
	}
	req, err := env.newRequest(method, walletActionMetadata{
		Action:      p.Action,
		Payload:     p.Payload,
		Description: p.Description,
		Date:        env.now().UnixMilli(),
	})
	if err != nil {
		return failed(p, err)
	}
	return env.send(ctx, req, p, p.CustomID)
}

// SwitchToGroup builds the action that makes the wallet act as a group
// policy. An empty address switches back to the individual account.
func SwitchToGroup(groupPolicyAddress, description string) WalletActionParams {
	p := WalletActionParams{Action: types.ActionSwitchToGroup, Description: description}
	if groupPolicyAddress != "" {
		p.Payload = map[string]string{"address": groupPolicyAddress}
	}
	return p
}

// RemovePendingMethod builds the action that drops a queued wallet request.
func RemovePendingMethod(customID string) WalletActionParams {
	return WalletActionParams{
		Action:  types.ActionRemovePendingMethod,
		Payload: map[string]string{"customId": customID},
	}
}
