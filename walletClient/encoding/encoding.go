// Package encoding builds the base64 protobuf Any payloads that wallets
// expect as transaction messages.
package encoding

import (
	"encoding/base64"
	"fmt"
	"strings"

	sdkmath "cosmossdk.io/math"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/bech32"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	"github.com/cosmos/gogoproto/proto"

	walleterrors "github.com/pushchain/push-wallet-connect/walletClient/errors"
)

const (
	// DenomHash is the display denom. It cannot be sent on chain.
	DenomHash = "hash"
	// DenomNHash is the base denom; 1 hash = 10^9 nhash.
	DenomNHash = "nhash"

	hashExponent = 9
)

// NormalizeCoin converts a display amount into a chain coin. The hash denom
// (any case) becomes nhash with the amount scaled by 10^9. Fractional base
// amounts are truncated.
func NormalizeCoin(amount, denom string) (sdk.Coin, error) {
	denom = strings.ToLower(strings.TrimSpace(denom))
	if denom == "" {
		denom = DenomHash
	}
	dec, err := sdkmath.LegacyNewDecFromStr(strings.TrimSpace(amount))
	if err != nil {
		return sdk.Coin{}, walleterrors.NewEncodingError("", fmt.Sprintf("invalid amount %q", amount), err)
	}
	if denom == DenomHash {
		dec = dec.Mul(sdkmath.LegacyNewDec(10).Power(hashExponent))
		denom = DenomNHash
	}
	coin := sdk.Coin{Denom: denom, Amount: dec.TruncateInt()}
	if err := coin.Validate(); err != nil {
		return sdk.Coin{}, walleterrors.NewEncodingError("", "invalid coin", err)
	}
	return coin, nil
}

// ValidateAddress checks that addr is bech32 with the given human readable
// prefix. An empty prefix accepts any.
func ValidateAddress(addr, prefix string) error {
	hrp, _, err := bech32.DecodeAndConvert(addr)
	if err != nil {
		return walleterrors.NewValidationError("", fmt.Sprintf("invalid address %q: %v", addr, err))
	}
	if prefix != "" && hrp != prefix {
		return walleterrors.NewValidationError("", fmt.Sprintf("address %q has prefix %q, want %q", addr, hrp, prefix))
	}
	return nil
}

// AnyBase64 packs msg into a google.protobuf.Any and returns its base64
// serialization.
func AnyBase64(msg proto.Message) (string, error) {
	anyMsg, err := codectypes.NewAnyWithValue(msg)
	if err != nil {
		return "", walleterrors.NewEncodingError("", "failed to pack message", err)
	}
	bz, err := proto.Marshal(anyMsg)
	if err != nil {
		return "", walleterrors.NewEncodingError("", "failed to marshal message", err)
	}
	return base64.StdEncoding.EncodeToString(bz), nil
}

// DecodeAnyBase64 reverses AnyBase64, returning the type url and value bytes.
func DecodeAnyBase64(b64 string) (string, []byte, error) {
	bz, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", nil, walleterrors.NewEncodingError("", "invalid base64 message", err)
	}
	var anyMsg codectypes.Any
	if err := proto.Unmarshal(bz, &anyMsg); err != nil {
		return "", nil, walleterrors.NewEncodingError("", "invalid any message", err)
	}
	return anyMsg.TypeUrl, anyMsg.Value, nil
}

// MsgSend builds a bank MsgSend.
func MsgSend(from, to string, coin sdk.Coin) *banktypes.MsgSend {
	return &banktypes.MsgSend{
		FromAddress: from,
		ToAddress:   to,
		Amount:      sdk.NewCoins(coin),
	}
}

// MsgDelegate builds a staking MsgDelegate.
func MsgDelegate(delegator, validator string, coin sdk.Coin) *stakingtypes.MsgDelegate {
	return &stakingtypes.MsgDelegate{
		DelegatorAddress: delegator,
		ValidatorAddress: validator,
		Amount:           coin,
	}
}
