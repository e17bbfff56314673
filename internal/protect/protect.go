package protect

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	herrors "github.com/harakeke-dev/harakeke/internal/errors"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

// Scope is the trust boundary under which protected data can later be
// unprotected.
type Scope int

const (
	// ScopeCurrentUser binds data to the current user's OS-managed key.
	// Used for all secret payloads.
	ScopeCurrentUser Scope = iota
	// ScopeLocalMachine binds data to the machine rather than the user.
	// Used only for the entropy blob, so a different user profile does not
	// orphan entropy as eagerly as the secrets it protects.
	ScopeLocalMachine
)

// String returns a string representation of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeCurrentUser:
		return "current-user"
	case ScopeLocalMachine:
		return "local-machine"
	default:
		return "unknown"
	}
}

// Protector encrypts and decrypts data under a scope, mixing caller-supplied
// entropy into the key derivation. It is the only place where platform trust
// boundaries are encoded; the vault never hard-codes a platform primitive.
type Protector interface {
	Protect(plain, entropy []byte, scope Scope) ([]byte, error)
	Unprotect(cipher, entropy []byte, scope Scope) ([]byte, error)
}

const nonceSize = 24

// deriveKey mixes a scope master key with entropy and a scope label into the
// 32-byte sealing key.
func deriveKey(master, entropy []byte, scope Scope) ([32]byte, error) {
	var key [32]byte
	r := hkdf.New(sha256.New, master, entropy, []byte("harakeke/"+scope.String()))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, fmt.Errorf("failed to derive sealing key: %w", err)
	}
	return key, nil
}

// seal encrypts plain under the derived key with a random nonce prefixed to
// the ciphertext.
func seal(master, plain, entropy []byte, scope Scope) ([]byte, error) {
	key, err := deriveKey(master, entropy, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrProtectFailed, err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, fmt.Errorf("%w: failed to generate nonce: %v", herrors.ErrProtectFailed, err)
	}

	return secretbox.Seal(nonce[:], plain, &nonce, &key), nil
}

// open decrypts a nonce-prefixed ciphertext produced by seal.
func open(master, cipher, entropy []byte, scope Scope) ([]byte, error) {
	if len(cipher) < nonceSize {
		return nil, fmt.Errorf("%w: ciphertext too short (%d bytes)", herrors.ErrUnprotectFailed, len(cipher))
	}

	key, err := deriveKey(master, entropy, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrUnprotectFailed, err)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], cipher[:nonceSize])

	plain, ok := secretbox.Open(nil, cipher[nonceSize:], &nonce, &key)
	if !ok {
		return nil, herrors.ErrUnprotectFailed
	}
	return plain, nil
}
