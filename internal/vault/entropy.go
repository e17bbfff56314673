package vault

import (
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/harakeke-dev/harakeke/internal/logging"
	"github.com/harakeke-dev/harakeke/internal/protect"
)

const (
	// entropyFileName is a dotfile so directory listings and the secret
	// codec both treat it as a hidden housekeeping artifact.
	entropyFileName = ".entropy"
	entropySize     = 32
)

// loadOrCreateEntropy returns the vault's 32-byte entropy value, generating
// and persisting it on first use.
//
// The persisted blob is machine-scope protected. If it fails to decrypt
// (moved machine, corruption, tampering) or decrypts to the wrong length, it
// is discarded and regenerated. Regeneration is self-healing but destructive:
// every secret encrypted under the old entropy becomes unrecoverable, which
// is why the event is logged at error level.
func loadOrCreateEntropy(log logger.Logger, dir string, protector protect.Protector) ([]byte, error) {
	path := filepath.Join(dir, entropyFileName)

	cipher, readErr := os.ReadFile(path)
	if readErr == nil {
		entropy, err := protector.Unprotect(cipher, nil, protect.ScopeLocalMachine)
		if err == nil && len(entropy) == entropySize {
			return entropy, nil
		}
		if err == nil {
			err = fmt.Errorf("decrypted entropy is %d bytes, expected %d", len(entropy), entropySize)
		}
		log.Errorf("Entropy blob is unreadable and will be regenerated; previously stored secrets are no longer recoverable: %v", err)

		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			return nil, fmt.Errorf("failed to remove corrupt entropy file: %w", removeErr)
		}
	} else if !os.IsNotExist(readErr) {
		return nil, fmt.Errorf("failed to read entropy file: %w", readErr)
	}

	return createEntropy(log, path, protector)
}

// createEntropy generates fresh entropy and persists it protected at machine
// scope with owner-only permissions.
func createEntropy(log logger.Logger, path string, protector protect.Protector) ([]byte, error) {
	entropy := make([]byte, entropySize)
	if _, err := rand.Read(entropy); err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}

	cipher, err := protector.Protect(entropy, nil, protect.ScopeLocalMachine)
	if err != nil {
		return nil, fmt.Errorf("failed to protect entropy: %w", err)
	}

	if err := writeAtomic(log, path, cipher); err != nil {
		return nil, fmt.Errorf("failed to persist entropy: %w", err)
	}

	log.Debugf("Generated new vault entropy at %s", path)
	return entropy, nil
}
