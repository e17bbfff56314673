package vault

import (
	"fmt"
	"os"

	logger "github.com/harakeke-dev/harakeke/internal/logging"
)

const secretFilePerm = 0600

// writeAtomic writes data to path so that a reader at any instant sees either
// the fully-old or fully-new content, never a partial write.
//
// The data goes to path+".tmp" first, is permission-hardened, and is then
// renamed over the destination. Rename is atomic on POSIX filesystems for
// both the create and the replace case. Every failure branch removes the
// temp file before propagating.
func writeAtomic(log logger.Logger, path string, data []byte) error {
	tmpPath := path + tmpFileSuffix

	// A stale temp file from a crashed earlier attempt would make the
	// exclusive create below fail, so clear it first.
	if err := os.Remove(tmpPath); err != nil && !os.IsNotExist(err) {
		log.Warnf("Failed to remove stale temp file %s: %v", tmpPath, err)
	}

	if err := writeExclusive(tmpPath, data); err != nil {
		log.Warnf("Exclusive create of %s failed, degrading to plain write: %v", tmpPath, err)
		if err := os.WriteFile(tmpPath, data, secretFilePerm); err != nil {
			return fmt.Errorf("failed to write temp file %s: %w", tmpPath, err)
		}
	}

	// Harden permissions before the file becomes visible under its final
	// name. Best effort: the encryption layer is the real confidentiality
	// boundary.
	if err := os.Chmod(tmpPath, secretFilePerm); err != nil {
		log.Warnf("Failed to restrict permissions on %s: %v", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			log.Warnf("Failed to clean up temp file %s: %v", tmpPath, removeErr)
		}
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// writeExclusive creates path with O_EXCL and writes data through to disk.
func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, secretFilePerm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
