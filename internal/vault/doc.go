// Package vault implements the local encrypted secret store.
//
// A Vault persists sensitive configuration values (API keys, OAuth client
// secrets, license keys) as individual files inside a permission-restricted
// directory, encrypted at rest through a protect.Protector. A 32-byte entropy
// value, itself protected at machine scope, is mixed into every encryption
// operation.
//
// # Layout
//
//	<dir>/.entropy                         machine-scope-protected entropy blob
//	<dir>/<sanitized>_<hash8>.secret       base64 text of protected ciphertext
//	<dir>/<name>.secret.tmp                transient; never persists past a
//	                                       completed operation
//
// # Guarantees
//
//   - Writes are atomic: a reader at any instant sees either the fully-old or
//     fully-new record content (SetSync is the documented exception).
//   - One mutex per Vault serializes every operation end to end.
//   - Decryption failures on Get surface as absence, not errors.
//   - Entropy corruption self-heals by regeneration, which permanently
//     invalidates previously stored secrets; the event is logged at error
//     level.
//   - Close zeroes the cached entropy; later calls fail with ErrVaultClosed.
//
// The vault is a single-machine, single-user store. It holds no network
// connections and consumes nothing but a logger, a directory, and a
// Protector.
package vault
