package methods

import (
	"context"
	"encoding/json"

	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

const (
	signMessageDescription = "Sign Message"
	signJWTDescription     = "Sign JWT Token"
)

// SignHexMessageParams is a message that is already hex encoded.
type SignHexMessageParams struct {
	HexMessage  string `json:"hexMessage"`
	Description string `json:"description,omitempty"`
	CustomID    string `json:"customId,omitempty"`
}

type signMetadata struct {
	Description string `json:"description"`
	Address     string `json:"address"`
	PublicKey   string `json:"publicKey"`
	Date        int64  `json:"date"`
	CustomID    string `json:"customId,omitempty"`
	// Expires is the absolute JWT expiry in epoch seconds.
	Expires int64 `json:"expires,omitempty"`
}

// SignHexMessage asks the wallet to sign p.HexMessage as is.
func SignHexMessage(ctx context.Context, env Env, p SignHexMessageParams) types.Result {
	description := p.Description
	if description == "" {
		description = signMessageDescription
	}
	req, err := env.newRequest(types.WalletMethodSign, signMetadata{
		Description: description,
		Address:     env.Address,
		PublicKey:   env.PublicKey,
		Date:        env.now().UnixMilli(),
		CustomID:    p.CustomID,
	}, p.HexMessage)
	if err != nil {
		return failed(p, err)
	}
	return env.send(ctx, req, p, p.CustomID)
}

// SignJWTParams request a new JWT valid for ExpiresSeconds from now.
type SignJWTParams struct {
	ExpiresSeconds int64  `json:"expires"`
	Description    string `json:"description,omitempty"`
	CustomID       string `json:"customId,omitempty"`
}

// SignJWT asks the wallet for a fresh JWT. The claims are built and signed
// wallet side; this only carries the expiry. SignedJWT returns the token
// when the wallet answered with one.
func SignJWT(ctx context.Context, env Env, p SignJWTParams) types.Result {
	description := p.Description
	if description == "" {
		description = signJWTDescription
	}
	now := env.now()
	req, err := env.newRequest(types.WalletMethodSignJWT, signMetadata{
		Description: description,
		Address:     env.Address,
		PublicKey:   env.PublicKey,
		Date:        now.UnixMilli(),
		CustomID:    p.CustomID,
		Expires:     now.Unix() + p.ExpiresSeconds,
	})
	if err != nil {
		return failed(p, err)
	}
	return env.send(ctx, req, p, p.CustomID)
}

// SignedJWT extracts the token from a SignJWT result.
func SignedJWT(res types.Result) (string, bool) {
	if !res.Valid || res.Failed() {
		return "", false
	}
	var jwt string
	if err := json.Unmarshal(res.Result, &jwt); err != nil || jwt == "" {
		return "", false
	}
	return jwt, true
}
