// Package reconciler reacts to writes made to the shared storage namespaces
// by other service instances.
package reconciler

import (
	"encoding/json"

	"github.com/spf13/cast"

	"github.com/pushchain/push-wallet-connect/walletClient/accounts"
	"github.com/pushchain/push-wallet-connect/walletClient/storage"
)

// Fields watched per namespace. Anything else changing is ignored.
var (
	TransportFields = []string{"accounts", "bridge", "connected"}
	ServiceFields   = []string{"connectionTimeout", "connectionEXP", "connectionEST", "signedJWT", "walletAppId"}
)

// Change is a relevant difference between two versions of a namespace.
type Change struct {
	Key    string
	Fields []string
}

// ChangedFields lists the watched fields of key that differ between the two
// serialized blobs. watched is false for keys outside the two namespaces.
// Malformed or missing blobs compare as empty objects.
func ChangedFields(key, oldValue, newValue string) (fields []string, watched bool) {
	var allow []string
	switch key {
	case storage.KeyTransport:
		allow = TransportFields
	case storage.KeyService:
		allow = ServiceFields
	default:
		return nil, false
	}

	oldObj := storage.ParseObject(oldValue)
	newObj := storage.ParseObject(newValue)
	for _, field := range allow {
		if field == "accounts" {
			if firstAddress(oldObj[field]) != firstAddress(newObj[field]) {
				fields = append(fields, field)
			}
			continue
		}
		if scalar(oldObj[field]) != scalar(newObj[field]) {
			fields = append(fields, field)
		}
	}
	return fields, true
}

// firstAddress compares accounts by the resolved address of the first entry.
func firstAddress(v any) string {
	list, ok := v.([]any)
	if !ok {
		return ""
	}
	raw := make([]json.RawMessage, 0, len(list))
	for _, item := range list {
		b, err := json.Marshal(item)
		if err != nil {
			return ""
		}
		raw = append(raw, b)
	}
	return accounts.FirstAddress(raw)
}

func scalar(v any) string {
	if v == nil {
		return ""
	}
	return cast.ToString(v)
}
