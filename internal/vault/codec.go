package vault

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	herrors "github.com/harakeke-dev/harakeke/internal/errors"
)

const (
	secretFileSuffix = ".secret"
	tmpFileSuffix    = ".tmp"
)

// unsafeNameChars matches everything that may not appear in a secret filename.
var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// sanitizeName maps a logical secret name to a filesystem-safe string.
// Distinct names may sanitize identically; secretFileName disambiguates them.
func sanitizeName(name string) string {
	sanitized := unsafeNameChars.ReplaceAllString(name, "_")
	if sanitized == "" {
		sanitized = "_"
	}
	return sanitized
}

// secretFileName maps a logical name to its on-disk filename. The sha256
// suffix keeps names that sanitize identically from colliding.
func secretFileName(name string) string {
	sum := sha256.Sum256([]byte(name))
	return sanitizeName(name) + "_" + hex.EncodeToString(sum[:])[:8] + secretFileSuffix
}

// isSecretFile reports whether a directory entry is a secret record, as
// opposed to housekeeping artifacts like the entropy blob or stale temp files.
func isSecretFile(filename string) bool {
	return strings.HasSuffix(filename, secretFileSuffix) && !strings.HasSuffix(filename, tmpFileSuffix)
}

// encodeRecord serializes a record to its on-disk text form: one base64 line
// of ciphertext and one base64 line of the verbatim logical name. The name
// line lets listing and export report true logical names, which are not
// recoverable from the sanitized filename.
func encodeRecord(cipher []byte, name string) string {
	return base64.StdEncoding.EncodeToString(cipher) + "\n" +
		base64.StdEncoding.EncodeToString([]byte(name)) + "\n"
}

// decodeRecord parses the on-disk text form back into ciphertext and logical
// name.
func decodeRecord(text string) ([]byte, string, error) {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 2 {
		return nil, "", fmt.Errorf("%w: expected 2 lines, found %d", herrors.ErrMalformedRecord, len(lines))
	}

	cipher, err := base64.StdEncoding.DecodeString(lines[0])
	if err != nil {
		return nil, "", fmt.Errorf("%w: bad payload encoding: %v", herrors.ErrMalformedRecord, err)
	}
	name, err := base64.StdEncoding.DecodeString(lines[1])
	if err != nil {
		return nil, "", fmt.Errorf("%w: bad name encoding: %v", herrors.ErrMalformedRecord, err)
	}

	return cipher, string(name), nil
}
