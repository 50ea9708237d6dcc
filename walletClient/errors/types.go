package errors

import (
	"fmt"
)

// ErrorCode represents different categories of errors
type ErrorCode string

const (
	// ErrCodeNoConnector indicates an operation was attempted without a transport connector
	ErrCodeNoConnector ErrorCode = "NO_CONNECTOR"

	// ErrCodeTransport indicates the transport request failed or was rejected
	ErrCodeTransport ErrorCode = "TRANSPORT"

	// ErrCodeStorage indicates persisted storage could not be read or written
	ErrCodeStorage ErrorCode = "STORAGE"

	// ErrCodeValidation indicates input validation errors
	ErrCodeValidation ErrorCode = "VALIDATION"

	// ErrCodeConfig indicates configuration errors
	ErrCodeConfig ErrorCode = "CONFIG"

	// ErrCodeEncoding indicates a message could not be encoded
	ErrCodeEncoding ErrorCode = "ENCODING"

	// ErrCodeTimeout indicates timeout errors
	ErrCodeTimeout ErrorCode = "TIMEOUT"

	// ErrCodeInternal indicates internal system errors
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// MsgNoWalletConnected is the error text returned by every dispatcher when no
// connector is available.
const MsgNoWalletConnected = "No wallet connected"

// Severity represents the severity level of an error
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// WalletError is an error raised while talking to, or keeping state for, a wallet session.
type WalletError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Method   string                 `json:"method,omitempty"`
	Severity Severity               `json:"severity"`
	Cause    error                  `json:"-"`
	Context  map[string]interface{} `json:"context,omitempty"`
}

// NewWalletError creates a new WalletError
func NewWalletError(code ErrorCode, method, message string, cause error) *WalletError {
	return &WalletError{
		Code:     code,
		Message:  message,
		Method:   method,
		Severity: determineSeverity(code),
		Cause:    cause,
		Context:  make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *WalletError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Method != "" {
		return fmt.Sprintf("[%s:%s] %s", e.Method, e.Code, msg)
	}
	return fmt.Sprintf("[%s] %s", e.Code, msg)
}

// Unwrap returns the underlying cause
func (e *WalletError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *WalletError) WithContext(key string, value interface{}) *WalletError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithSeverity overrides the default severity
func (e *WalletError) WithSeverity(severity Severity) *WalletError {
	e.Severity = severity
	return e
}

// IsRetryable returns true if the error is retryable
func (e *WalletError) IsRetryable() bool {
	switch e.Code {
	case ErrCodeTimeout:
		return true
	case ErrCodeStorage:
		// Storage errors are usually lock contention unless marked critical
		return e.Severity != SeverityCritical
	default:
		return false
	}
}

// determineSeverity determines the default severity based on error code
func determineSeverity(code ErrorCode) Severity {
	switch code {
	case ErrCodeInternal:
		return SeverityCritical
	case ErrCodeStorage:
		return SeverityHigh
	case ErrCodeTransport, ErrCodeTimeout, ErrCodeEncoding:
		return SeverityMedium
	case ErrCodeValidation, ErrCodeConfig, ErrCodeNoConnector:
		return SeverityLow
	default:
		return SeverityInfo
	}
}

// NewNoConnectorError creates the error returned when no wallet is connected
func NewNoConnectorError(method string) *WalletError {
	return NewWalletError(ErrCodeNoConnector, method, MsgNoWalletConnected, nil)
}

// NewTransportError creates a transport error
func NewTransportError(method, message string, cause error) *WalletError {
	return NewWalletError(ErrCodeTransport, method, message, cause)
}

// NewStorageError creates a storage error
func NewStorageError(message string, cause error) *WalletError {
	return NewWalletError(ErrCodeStorage, "", message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(method, message string) *WalletError {
	return NewWalletError(ErrCodeValidation, method, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string) *WalletError {
	return NewWalletError(ErrCodeConfig, "", message, nil)
}

// NewEncodingError creates an encoding error
func NewEncodingError(method, message string, cause error) *WalletError {
	return NewWalletError(ErrCodeEncoding, method, message, cause)
}

// NewInternalError creates an internal error
func NewInternalError(method, message string, cause error) *WalletError {
	return NewWalletError(ErrCodeInternal, method, message, cause)
}
