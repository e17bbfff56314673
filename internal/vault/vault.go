package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	herrors "github.com/harakeke-dev/harakeke/internal/errors"
	logger "github.com/harakeke-dev/harakeke/internal/logging"
	"github.com/harakeke-dev/harakeke/internal/protect"

	"github.com/google/uuid"
)

// Vault is a process-local, file-backed store for sensitive configuration
// values, encrypted at rest through a Protector. One mutex serializes every
// operation end to end: two concurrent Sets on different names still execute
// one after the other, trading throughput for a total order over vault
// mutations and a race-free entropy cache.
type Vault struct {
	log       logger.Logger
	dir       string
	protector protect.Protector
	aliases   []string

	mu      sync.Mutex
	entropy []byte
	closed  bool
}

// Option configures a Vault during construction.
type Option func(*options)

type options struct {
	dir       string
	protector protect.Protector
	aliases   []string
}

// WithDirectory overrides the resolved vault directory.
func WithDirectory(dir string) Option {
	return func(o *options) { o.dir = dir }
}

// WithProtector substitutes the protection primitive. The default is the OS
// keychain-backed protector.
func WithProtector(p protect.Protector) Option {
	return func(o *options) { o.protector = p }
}

// WithMigrationAliases replaces the built-in environment-variable allow-list
// consumed by MigrateFromEnvironment.
func WithMigrationAliases(aliases []string) Option {
	return func(o *options) { o.aliases = aliases }
}

// New constructs a vault, resolving its directory and loading or creating its
// entropy. Construction fails loudly when no writable directory can be
// established anywhere.
func New(log logger.Logger, opts ...Option) (*Vault, error) {
	o := options{protector: protect.NewOSProtector(), aliases: defaultMigrationAliases}
	for _, opt := range opts {
		opt(&o)
	}

	dir, err := resolveDir(log, o.dir)
	if err != nil {
		return nil, err
	}

	entropy, err := loadOrCreateEntropy(log, dir, o.protector)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault entropy: %w", err)
	}

	log.Debugf("Vault rooted at %s", dir)
	return &Vault{
		log:       log,
		dir:       dir,
		protector: o.protector,
		aliases:   o.aliases,
		entropy:   entropy,
	}, nil
}

// Dir returns the resolved vault directory.
func (v *Vault) Dir() string {
	return v.dir
}

// Close clears the cached entropy from memory. Every subsequent call on the
// vault fails with ErrVaultClosed rather than risking use of cleared key
// material.
func (v *Vault) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	zero(v.entropy)
	v.entropy = nil
	v.closed = true
	return nil
}

// Get returns the decrypted value for name. A missing record returns
// ok=false with no error. A record that fails to decrypt also returns
// ok=false: callers generally only branch on presence, and surfacing
// cryptographic failure details would leak more than it helps, so the
// failure is logged instead.
func (v *Vault) Get(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return "", false, herrors.ErrVaultClosed
	}
	return v.getLocked(name)
}

// GetSync is Get for call sites that cannot thread a context.
func (v *Vault) GetSync(name string) (string, bool, error) {
	return v.Get(context.Background(), name)
}

// Set encrypts value and writes it atomically under name. Last write wins.
func (v *Vault) Set(ctx context.Context, name, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return herrors.ErrVaultClosed
	}
	return v.setLocked(name, value, true)
}

// SetSync writes the record with a direct overwrite instead of an atomic
// replace. This is a reduced-guarantee path kept for bootstrap code that runs
// before the atomic pipeline is worth its cost; a crash mid-write can leave a
// torn record. Prefer Set.
func (v *Vault) SetSync(name, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return herrors.ErrVaultClosed
	}
	return v.setLocked(name, value, false)
}

// Rotate writes newValue atomically, then reads it back and verifies
// equality. On ErrRotateVerification the record may hold either the old or
// the new value; the caller must re-read to determine which.
func (v *Vault) Rotate(ctx context.Context, name, newValue string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return herrors.ErrVaultClosed
	}

	if err := v.setLocked(name, newValue, true); err != nil {
		return err
	}

	got, ok, err := v.getLocked(name)
	if err != nil {
		return fmt.Errorf("%w: read-back failed: %v", herrors.ErrRotateVerification, err)
	}
	if !ok || got != newValue {
		v.log.Errorf("Rotation of %s did not verify; record may hold either value", name)
		return herrors.ErrRotateVerification
	}
	return nil
}

// Delete removes the record for name. Deleting an absent name is a no-op.
func (v *Vault) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return herrors.ErrVaultClosed
	}
	return v.deleteLocked(name)
}

// ListNames returns the sorted logical names of every secret on disk,
// excluding housekeeping artifacts. No decryption of payloads occurs.
func (v *Vault) ListNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, herrors.ErrVaultClosed
	}
	return v.listLocked()
}

// ExportAll decrypts every secret and returns the full name-to-value mapping
// as indented JSON. The output materializes plaintext secrets, so the call is
// always logged as a warning. Records that fail to decrypt are skipped.
func (v *Vault) ExportAll(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return "", herrors.ErrVaultClosed
	}

	v.log.Warnf("Exporting all secrets as plaintext; handle the output as sensitive material")

	entries, err := os.ReadDir(v.dir)
	if err != nil {
		return "", fmt.Errorf("failed to read vault directory: %w", err)
	}

	export := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !isSecretFile(entry.Name()) {
			continue
		}
		name, value, ok := v.readRecord(entry.Name())
		if !ok {
			continue
		}
		export[name] = value
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize export: %w", err)
	}
	return string(data), nil
}

// ImportAll parses a JSON name-to-value mapping and stores every entry.
func (v *Vault) ImportAll(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return herrors.ErrVaultClosed
	}

	var entries map[string]string
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return fmt.Errorf("%w: %v", herrors.ErrMalformedImport, err)
	}

	for name, value := range entries {
		if err := v.setLocked(name, value, true); err != nil {
			return fmt.Errorf("failed to import %s: %w", name, err)
		}
	}
	v.log.Infof("Imported %d secrets", len(entries))
	return nil
}

// TestConnection verifies the vault end to end: the directory accepts writes
// and a throwaway secret survives a full set/get/delete round trip. Used as a
// health probe.
func (v *Vault) TestConnection(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return false
	}
	return v.testConnectionLocked()
}

func (v *Vault) testConnectionLocked() bool {
	if err := probeWrite(v.dir); err != nil {
		v.log.Errorf("Vault directory write probe failed: %v", err)
		return false
	}

	probeName := "harakeke-probe-" + uuid.NewString()
	probeValue := uuid.NewString()

	if err := v.setLocked(probeName, probeValue, true); err != nil {
		v.log.Errorf("Connection test write failed: %v", err)
		return false
	}
	defer func() {
		if err := v.deleteLocked(probeName); err != nil {
			v.log.Warnf("Failed to clean up connection test secret: %v", err)
		}
	}()

	got, ok, err := v.getLocked(probeName)
	if err != nil || !ok || got != probeValue {
		v.log.Errorf("Connection test round trip failed (present=%t, err=%v)", ok, err)
		return false
	}
	return true
}

// MigrateFromEnvironment reads the configured allow-list of environment
// variables and stores every set, non-placeholder value. Returns the names
// that were migrated.
func (v *Vault) MigrateFromEnvironment(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, herrors.ErrVaultClosed
	}

	var migrated []string
	seen := make(map[string]bool)
	for _, alias := range v.aliases {
		key := strings.ToUpper(alias)
		if seen[key] {
			continue
		}
		seen[key] = true

		value, ok := os.LookupEnv(key)
		if !ok && alias != key {
			// Environment lookups are case-sensitive outside Windows, so
			// fall back to the alias exactly as configured.
			value, ok = os.LookupEnv(alias)
		}
		if !ok || value == "" {
			continue
		}
		if isPlaceholder(value) {
			v.log.Debugf("Skipping %s: value looks like an unexpanded placeholder", key)
			continue
		}

		if err := v.setLocked(key, value, true); err != nil {
			return migrated, fmt.Errorf("failed to migrate %s: %w", key, err)
		}
		v.log.Infof("Migrated %s from environment", key)
		migrated = append(migrated, key)
	}
	return migrated, nil
}

// getLocked reads and decrypts a record. Callers must hold v.mu.
func (v *Vault) getLocked(name string) (string, bool, error) {
	path := filepath.Join(v.dir, secretFileName(name))

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read secret %s: %w", name, err)
	}

	cipher, _, err := decodeRecord(string(data))
	if err != nil {
		v.log.Errorf("Secret %s is malformed on disk, treating as absent: %v", name, err)
		return "", false, nil
	}

	plain, err := v.protector.Unprotect(cipher, v.entropy, protect.ScopeCurrentUser)
	if err != nil {
		v.log.Errorf("Failed to decrypt secret %s, treating as absent: %v", name, err)
		return "", false, nil
	}
	value := string(plain)
	zero(plain)
	return value, true, nil
}

// setLocked encrypts and writes a record. Callers must hold v.mu. The
// plaintext buffer is zeroed on every exit path.
func (v *Vault) setLocked(name, value string, atomic bool) error {
	plain := []byte(value)
	defer zero(plain)

	cipher, err := v.protector.Protect(plain, v.entropy, protect.ScopeCurrentUser)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret %s: %w", name, err)
	}

	text := encodeRecord(cipher, name)
	path := filepath.Join(v.dir, secretFileName(name))

	if atomic {
		if err := writeAtomic(v.log, path, []byte(text)); err != nil {
			return fmt.Errorf("failed to store secret %s: %w", name, err)
		}
	} else {
		if err := os.WriteFile(path, []byte(text), secretFilePerm); err != nil {
			return fmt.Errorf("failed to store secret %s: %w", name, err)
		}
	}

	v.log.Debugf("Stored secret %s (atomic=%t)", name, atomic)
	return nil
}

// deleteLocked removes a record, tolerating absence. Callers must hold v.mu.
func (v *Vault) deleteLocked(name string) error {
	path := filepath.Join(v.dir, secretFileName(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete secret %s: %w", name, err)
	}
	return nil
}

// listLocked returns sorted logical names. Callers must hold v.mu.
func (v *Vault) listLocked() ([]string, error) {
	entries, err := os.ReadDir(v.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isSecretFile(entry.Name()) {
			continue
		}
		names = append(names, v.logicalName(entry.Name()))
	}
	sort.Strings(names)
	return names, nil
}

// logicalName recovers the logical secret name from a record file, falling
// back to the filename stem when the record cannot be parsed.
func (v *Vault) logicalName(filename string) string {
	data, err := os.ReadFile(filepath.Join(v.dir, filename))
	if err == nil {
		if _, name, decodeErr := decodeRecord(string(data)); decodeErr == nil {
			return name
		}
	}
	stem := strings.TrimSuffix(filename, secretFileSuffix)
	if i := strings.LastIndex(stem, "_"); i > 0 {
		stem = stem[:i]
	}
	return stem
}

// readRecord decrypts one record file, returning its logical name and value.
func (v *Vault) readRecord(filename string) (string, string, bool) {
	data, err := os.ReadFile(filepath.Join(v.dir, filename))
	if err != nil {
		v.log.Errorf("Failed to read record %s: %v", filename, err)
		return "", "", false
	}

	cipher, name, err := decodeRecord(string(data))
	if err != nil {
		v.log.Errorf("Record %s is malformed, skipping: %v", filename, err)
		return "", "", false
	}

	plain, err := v.protector.Unprotect(cipher, v.entropy, protect.ScopeCurrentUser)
	if err != nil {
		v.log.Errorf("Failed to decrypt record %s, skipping: %v", filename, err)
		return "", "", false
	}
	value := string(plain)
	zero(plain)
	return name, value, true
}

// isPlaceholder reports whether a value looks like an unexpanded ${...}
// template rather than a real secret.
func isPlaceholder(value string) bool {
	return strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}")
}

// zero overwrites a byte slice so key material does not linger in memory.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
