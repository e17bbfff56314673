// Package errors provides typed error values for the Harakeke vault.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching. This makes
// error handling more robust and refactoring-safe.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Lifecycle errors: the vault cannot serve requests (ErrVaultClosed,
//     ErrVaultUnavailable)
//   - Protection errors: the protection primitive failed (ErrProtectFailed,
//     ErrUnprotectFailed, ErrInvalidEntropyLength)
//   - Record errors: an individual secret record is in trouble
//     (ErrRotateVerification, ErrMalformedRecord, ErrMalformedImport)
//
// # Usage
//
// Return errors from internal packages:
//
//	if v.closed {
//	    return errors.ErrVaultClosed
//	}
//
// Handle errors in the CLI layer:
//
//	err := v.Rotate(ctx, name, value)
//	if errors.Is(err, herrors.ErrRotateVerification) {
//	    // Tell the user to re-read the secret.
//	}
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("rotating %s: %w", name, errors.ErrRotateVerification)
package errors
