package methods

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/pushchain/push-wallet-connect/walletClient/types"
)

const defaultSendMessageDescription = "Send Message"

// SendMessageParams describe one or more base64 encoded Any messages to be
// signed and broadcast by the wallet.
type SendMessageParams struct {
	// Messages are base64 encoded google.protobuf.Any payloads.
	Messages                    Messages        `json:"message"`
	Description                 string          `json:"description,omitempty"`
	Method                      string          `json:"method,omitempty"`
	GasPrice                    *types.GasPrice `json:"gasPrice,omitempty"`
	FeeGranter                  string          `json:"feeGranter,omitempty"`
	FeePayer                    string          `json:"feePayer,omitempty"`
	Memo                        string          `json:"memo,omitempty"`
	TimeoutHeight               int64           `json:"timeoutHeight,omitempty"`
	ExtensionOptions            []string        `json:"extensionOptions,omitempty"`
	NonCriticalExtensionOptions []string        `json:"nonCriticalExtensionOptions,omitempty"`
	CustomID                    string          `json:"customId,omitempty"`
}

// Messages decodes from either a single base64 string or a list of them.
type Messages []string

func (m *Messages) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*m = nil
		if one != "" {
			*m = Messages{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.Wrap(err, "message must be a string or a list of strings")
	}
	*m = many
	return nil
}

// Message is a convenience for the single message case.
func Message(b64 string) Messages {
	return Messages{b64}
}

type sendMessageMetadata struct {
	Description                 string          `json:"description"`
	Address                     string          `json:"address"`
	GasPrice                    *types.GasPrice `json:"gasPrice,omitempty"`
	Date                        int64           `json:"date"`
	FeeGranter                  string          `json:"feeGranter,omitempty"`
	FeePayer                    string          `json:"feePayer,omitempty"`
	Memo                        string          `json:"memo,omitempty"`
	TimeoutHeight               int64           `json:"timeoutHeight,omitempty"`
	ExtensionOptions            []string        `json:"extensionOptions,omitempty"`
	NonCriticalExtensionOptions []string        `json:"nonCriticalExtensionOptions,omitempty"`
	CustomID                    string          `json:"customId,omitempty"`
}

// SendMessage asks the wallet to sign and broadcast p.Messages. The request
// params are the metadata JSON followed by each message as hex of its
// base64 text.
func SendMessage(ctx context.Context, env Env, p SendMessageParams) types.Result {
	method := p.Method
	if method == "" {
		method = types.WalletMethodSendTransaction
	}
	description := p.Description
	if description == "" {
		description = defaultSendMessageDescription
	}

	hexMessages := make([]string, 0, len(p.Messages))
	for _, m := range p.Messages {
		hexMessages = append(hexMessages, HexUTF8(m))
	}

	req, err := env.newRequest(method, sendMessageMetadata{
		Description:                 description,
		Address:                     env.Address,
		GasPrice:                    p.GasPrice,
		Date:                        env.now().UnixMilli(),
		FeeGranter:                  p.FeeGranter,
		FeePayer:                    p.FeePayer,
		Memo:                        p.Memo,
		TimeoutHeight:               p.TimeoutHeight,
		ExtensionOptions:            p.ExtensionOptions,
		NonCriticalExtensionOptions: p.NonCriticalExtensionOptions,
		CustomID:                    p.CustomID,
	}, hexMessages...)
	if err != nil {
		return failed(p, err)
	}
	return env.send(ctx, req, p, p.CustomID)
}
