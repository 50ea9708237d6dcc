package api

import "time"

// QueryResponse represents the standard query response format
type QueryResponse struct {
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// DisconnectRequest is the body of POST /api/v1/disconnect.
type DisconnectRequest struct {
	Message string `json:"message"`
}

// SwitchToGroupRequest is the body of POST /api/v1/switch-to-group.
type SwitchToGroupRequest struct {
	GroupPolicyAddress string `json:"groupPolicyAddress"`
	Description        string `json:"description"`
}

// RemovePendingMethodRequest is the body of POST /api/v1/remove-pending-method.
type RemovePendingMethodRequest struct {
	CustomID string `json:"customId"`
}

// ResetTimeoutRequest is the body of POST /api/v1/reset-timeout. Zero keeps
// the current timeout.
type ResetTimeoutRequest struct {
	Seconds int64 `json:"seconds"`
}
