package errors

import "errors"

// Lifecycle errors indicate the vault instance cannot serve requests at all.
var (
	// ErrVaultClosed indicates the vault was already closed and its key
	// material cleared from memory.
	ErrVaultClosed = errors.New("vault is closed")

	// ErrVaultUnavailable indicates no writable vault directory could be
	// established, including the fallback location.
	ErrVaultUnavailable = errors.New("no writable vault directory available")
)

// Protection errors indicate failures of the protection primitive.
var (
	// ErrProtectFailed indicates data could not be encrypted.
	ErrProtectFailed = errors.New("failed to protect data")

	// ErrUnprotectFailed indicates a ciphertext could not be decrypted under
	// the requested scope.
	ErrUnprotectFailed = errors.New("failed to unprotect data")

	// ErrInvalidEntropyLength indicates the persisted entropy blob did not
	// decrypt to exactly 32 bytes.
	ErrInvalidEntropyLength = errors.New("invalid entropy length")
)

// Record errors indicate issues with individual secret records.
var (
	// ErrRotateVerification indicates a rotated value did not read back equal
	// to what was written. The record may hold either the old or the new
	// value; callers should re-read to determine which.
	ErrRotateVerification = errors.New("rotation verification failed")

	// ErrMalformedRecord indicates a secret file on disk could not be parsed.
	ErrMalformedRecord = errors.New("malformed secret record")

	// ErrMalformedImport indicates the import payload was not a valid
	// name-to-value JSON object.
	ErrMalformedImport = errors.New("malformed import payload")
)
