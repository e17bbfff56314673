package vault

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	herrors "github.com/harakeke-dev/harakeke/internal/errors"
	logger "github.com/harakeke-dev/harakeke/internal/logging"
)

const dirPerm = 0700

// resolveDir establishes the vault directory. When override is empty, the
// primary location under the user's config directory is tried first; on
// failure a temp-root location is used. Failure of the fallback is fatal to
// vault construction: a vault that silently has no storage is a security
// hazard, not a soft-degrade case.
func resolveDir(log logger.Logger, override string) (string, error) {
	if override != "" {
		if err := ensureWritableDir(log, override); err != nil {
			return "", fmt.Errorf("%w: configured directory %s: %v", herrors.ErrVaultUnavailable, override, err)
		}
		return override, nil
	}

	primary, err := primaryDir()
	if err == nil {
		if err := ensureWritableDir(log, primary); err == nil {
			return primary, nil
		}
		log.Warnf("Primary vault directory %s is not usable, falling back to temp root: %v", primary, err)
	} else {
		log.Warnf("Failed to resolve primary vault directory, falling back to temp root: %v", err)
	}

	fallback := fallbackDir()
	if err := ensureWritableDir(log, fallback); err != nil {
		return "", fmt.Errorf("%w: fallback directory %s: %v", herrors.ErrVaultUnavailable, fallback, err)
	}
	return fallback, nil
}

// primaryDir is the per-user application-data location.
func primaryDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config directory: %w", err)
	}
	return filepath.Join(configDir, "harakeke", "vault"), nil
}

// fallbackDir is the temp-root location, namespaced by username so shared
// temp directories do not collide between users.
func fallbackDir() string {
	username := "default"
	if u, err := user.Current(); err == nil && u.Username != "" {
		username = u.Username
	}
	return filepath.Join(os.TempDir(), "harakeke-"+username, "vault")
}

// ensureWritableDir creates the directory, hardens its permissions, and
// verifies writability with a probe file.
func ensureWritableDir(log logger.Logger, dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	// Permission hardening is best effort; the encryption layer is the real
	// confidentiality boundary.
	if err := os.Chmod(dir, dirPerm); err != nil {
		log.Warnf("Failed to restrict permissions on %s: %v", dir, err)
	}

	if err := probeWrite(dir); err != nil {
		return fmt.Errorf("directory %s is not writable: %w", dir, err)
	}
	return nil
}

// probeWrite verifies the directory accepts writes, cleaning up after itself.
func probeWrite(dir string) error {
	probePath := filepath.Join(dir, ".write-probe"+tmpFileSuffix)
	if err := os.WriteFile(probePath, []byte("probe"), secretFilePerm); err != nil {
		return err
	}
	return os.Remove(probePath)
}
