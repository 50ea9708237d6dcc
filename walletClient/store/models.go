// Package store contains GORM-backed SQLite models used by the wallet client.
//
// Database Structure (database file: pwallet.db):
//
//	storage/
//	└── pwallet.db
//	    ├── storage_entries   (namespaced key/value blobs for the sqlite backend)
//	    └── request_records   (journal of wallet requests)
package store

import (
	"gorm.io/gorm"
)

// StorageEntry holds one persisted namespace as a serialized JSON blob.
type StorageEntry struct {
	gorm.Model
	Key   string `gorm:"uniqueIndex;not null"` // Namespace key, e.g. "walletconnect"
	Value string `gorm:"type:text"`            // Raw JSON
}

// RequestRecord is one wallet request dispatched by the session service.
type RequestRecord struct {
	gorm.Model
	RequestID     int64  `gorm:"index"`          // JSON-RPC id sent to the wallet (0 if never built)
	Method        string `gorm:"index;not null"` // Service method, e.g. "sendMessage"
	WalletMethod  string // Wallet RPC method, e.g. "provenance_sendTransaction"
	CustomID      string `gorm:"index"`          // Caller supplied tracking id
	Address       string // Account address at dispatch time
	Status        string `gorm:"index;not null"` // "PENDING", "SUCCESS", "FAILED", "STALE"
	Generation    string // Session generation the request was sent under
	RequestParams []byte // Raw JSON-encoded params
	Result        []byte // Raw JSON wallet response
	ErrorMsg      string `gorm:"type:text"`
}
