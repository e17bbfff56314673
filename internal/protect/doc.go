// Package protect wraps the platform protection primitive used to encrypt
// vault data at rest.
//
// A Protector encrypts and decrypts byte slices under a Scope without any
// externally supplied key. The caller mixes in a 32-byte entropy value that
// participates in every key derivation, so possession of the OS-managed
// master key alone is not enough to decrypt a payload.
//
// # Scopes
//
//   - ScopeCurrentUser: bound to the current user's OS keychain or secret
//     service. Used for all secret payloads.
//   - ScopeLocalMachine: bound to the machine identity. Used only for the
//     entropy blob.
//
// # Implementations
//
// OSProtector is the production implementation: the user-scope master key
// lives in the OS keyring (created lazily), and the machine-scope master is
// derived from the machine identity as a software key-wrap. StaticProtector
// runs the identical sealing pipeline with caller-supplied master keys for
// tests and platforms without a keychain.
//
// Both seal with NaCl secretbox under an HKDF-SHA256 derived key; the
// 24-byte nonce is prefixed to the ciphertext.
package protect
