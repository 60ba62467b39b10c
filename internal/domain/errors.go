package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrArchiveNotFound signals a missing archive record.
	ErrArchiveNotFound = errors.New("archive not found")
	// ErrObjectNotFound signals a missing attachment blob.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidInput signals a request that failed validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized signals missing or rejected credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPayloadTooLarge signals an upload above the configured size limit.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrNotImplemented signals an operation the active backend does not support.
	ErrNotImplemented = errors.New("not implemented")
	// ErrAIProviderError signals an AI provider failure.
	ErrAIProviderError = errors.New("ai provider error")
)

// Invalid wraps ErrInvalidInput with a field-level reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

// KeyPrefix namespaces every key written to the key-value store.
var KeyPrefix = "lightarchive:"

// SetKeyPrefix overrides KeyPrefix. Called once from main before stores are built.
func SetKeyPrefix(p string) {
	if p != "" {
		KeyPrefix = p
	}
}
