package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// WrapWalletError wraps an error as a WalletError if it isn't already one
func WrapWalletError(err error, code ErrorCode, method, message string) *WalletError {
	if err == nil {
		return nil
	}

	var walletErr *WalletError
	if errors.As(err, &walletErr) {
		walletErr.WithContext("wrapped_message", message)
		if method != "" && walletErr.Method == "" {
			walletErr.Method = method
		}
		return walletErr
	}

	return NewWalletError(code, method, message, err)
}

// Is checks if an error is of a specific type
func Is(err error, target error) bool {
	return errors.Is(err, target)
}

// As checks if an error can be assigned to a target type
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsWalletError checks if an error is a WalletError with specific code
func IsWalletError(err error, code ErrorCode) bool {
	var walletErr *WalletError
	if errors.As(err, &walletErr) {
		return walletErr.Code == code
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var walletErr *WalletError
	if errors.As(err, &walletErr) {
		return walletErr.IsRetryable()
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"database is locked",
		"database table is locked",
		"sqlite_busy",
		"connection reset",
		"timeout",
		"temporary failure",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// Message renders err the way dispatchers report it in Result.Error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var walletErr *WalletError
	if errors.As(err, &walletErr) && walletErr.Code == ErrCodeNoConnector {
		return MsgNoWalletConnected
	}
	return err.Error()
}
