package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	herrors "github.com/harakeke-dev/harakeke/internal/errors"
	logger "github.com/harakeke-dev/harakeke/internal/logging"
	"github.com/harakeke-dev/harakeke/internal/protect"
)

func newTestVault(t *testing.T, opts ...Option) *Vault {
	t.Helper()
	opts = append([]Option{
		WithDirectory(t.TempDir()),
		WithProtector(testStaticProtector(t)),
	}, opts...)
	v, err := New(logger.Logger{}, opts...)
	if err != nil {
		t.Fatalf("Failed to construct vault: %v", err)
	}
	t.Cleanup(func() { v.Close() })
	return v
}

func TestSetGetRoundTrip(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	values := map[string]string{
		"license-key":         "ABCD-1234-EFGH-5678",
		"oauth client secret": "s3cr3t with spaces\tand tabs",
		"unicode":             "pässwörd-日本語",
		"empty":               "",
	}

	for name, value := range values {
		if err := v.Set(ctx, name, value); err != nil {
			t.Fatalf("Set(%q) failed: %v", name, err)
		}
	}
	for name, want := range values {
		got, ok, err := v.Get(ctx, name)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", name, err)
		}
		if !ok {
			t.Fatalf("Get(%q) reported absent", name)
		}
		if got != want {
			t.Errorf("Get(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestGetAbsent(t *testing.T) {
	v := newTestVault(t)

	got, ok, err := v.Get(context.Background(), "never-set")
	if err != nil {
		t.Fatalf("Get of absent name errored: %v", err)
	}
	if ok || got != "" {
		t.Errorf("Expected absent, got (%q, %t)", got, ok)
	}
}

func TestGetSyncMatchesGet(t *testing.T) {
	v := newTestVault(t)
	if err := v.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok, err := v.GetSync("k")
	if err != nil || !ok || got != "v" {
		t.Errorf("GetSync = (%q, %t, %v), want (v, true, nil)", got, ok, err)
	}
}

func TestSetOverwritesLastWriteWins(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if err := v.Set(ctx, "k", "first"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := v.Set(ctx, "k", "second"); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	got, _, _ := v.Get(ctx, "k")
	if got != "second" {
		t.Errorf("Get = %q, want %q", got, "second")
	}

	names, err := v.ListNames(ctx)
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	if len(names) != 1 {
		t.Errorf("Expected 1 record after overwrite, got %d", len(names))
	}
}

func TestSetSyncDirectOverwrite(t *testing.T) {
	v := newTestVault(t)

	if err := v.SetSync("boot-key", "boot-value"); err != nil {
		t.Fatalf("SetSync failed: %v", err)
	}
	got, ok, err := v.GetSync("boot-key")
	if err != nil || !ok || got != "boot-value" {
		t.Errorf("GetSync = (%q, %t, %v), want (boot-value, true, nil)", got, ok, err)
	}
}

func TestDeleteIdempotent(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if err := v.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	before, _ := v.ListNames(ctx)

	if err := v.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := v.Get(ctx, "k"); ok {
		t.Error("Secret still present after delete")
	}

	// Deleting an absent name is a no-op, and the listing is unchanged by it.
	if err := v.Delete(ctx, "k"); err != nil {
		t.Errorf("Second delete errored: %v", err)
	}
	if err := v.Delete(ctx, "never-existed"); err != nil {
		t.Errorf("Delete of never-set name errored: %v", err)
	}
	after, _ := v.ListNames(ctx)
	if len(after) != len(before)-1 {
		t.Errorf("ListNames length = %d, want %d", len(after), len(before)-1)
	}
}

func TestListNamesSortedAndFiltered(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	for _, name := range []string{"zebra", "alpha", "mango"} {
		if err := v.Set(ctx, name, "v"); err != nil {
			t.Fatalf("Set(%q) failed: %v", name, err)
		}
	}

	names, err := v.ListNames(ctx)
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	want := []string{"alpha", "mango", "zebra"}
	if len(names) != len(want) {
		t.Fatalf("ListNames = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListNames[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	for _, name := range names {
		if name == entropyFileName {
			t.Error("ListNames leaked the entropy housekeeping artifact")
		}
	}
}

func TestNameCollisionSafety(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	// Both sanitize to "api_key" but must remain independent records.
	if err := v.Set(ctx, "api key", "value-one"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := v.Set(ctx, "api/key", "value-two"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	one, ok1, _ := v.Get(ctx, "api key")
	two, ok2, _ := v.Get(ctx, "api/key")
	if !ok1 || !ok2 {
		t.Fatalf("Colliding names not independently present: %t %t", ok1, ok2)
	}
	if one != "value-one" || two != "value-two" {
		t.Errorf("Colliding names mixed values: %q, %q", one, two)
	}
}

func TestRotate(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if err := v.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := v.Rotate(ctx, "k", "v2"); err != nil {
		t.Fatalf("Rotate failed: %v", err)
	}

	got, ok, _ := v.Get(ctx, "k")
	if !ok || got != "v2" {
		t.Errorf("Get after rotate = (%q, %t), want (v2, true)", got, ok)
	}
}

// verifyFailProtector decrypts successfully until armed, simulating storage
// that goes bad between the rotation write and its read-back verify.
type verifyFailProtector struct {
	*protect.StaticProtector
	failUnprotect bool
}

func (p *verifyFailProtector) Unprotect(cipher, entropy []byte, scope protect.Scope) ([]byte, error) {
	if p.failUnprotect && scope == protect.ScopeCurrentUser {
		return nil, herrors.ErrUnprotectFailed
	}
	return p.StaticProtector.Unprotect(cipher, entropy, scope)
}

func TestRotateVerificationFailure(t *testing.T) {
	p := &verifyFailProtector{StaticProtector: testStaticProtector(t)}
	v := newTestVault(t, WithProtector(p))
	ctx := context.Background()

	if err := v.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	p.failUnprotect = true
	err := v.Rotate(ctx, "k", "v2")
	if !errors.Is(err, herrors.ErrRotateVerification) {
		t.Errorf("Expected ErrRotateVerification, got: %v", err)
	}
}

func TestConcurrentSetsSerializeWithoutCorruption(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()
	const n = 16

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = v.Set(ctx, fmt.Sprintf("name-%02d", i), fmt.Sprintf("value-%02d", i))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("Concurrent Set %d failed: %v", i, err)
		}
	}
	for i := 0; i < n; i++ {
		got, ok, err := v.Get(ctx, fmt.Sprintf("name-%02d", i))
		if err != nil || !ok || got != fmt.Sprintf("value-%02d", i) {
			t.Errorf("Secret %d not intact after concurrent writes: (%q, %t, %v)", i, got, ok, err)
		}
	}

	names, _ := v.ListNames(ctx)
	if len(names) != n {
		t.Errorf("ListNames = %d records, want %d", len(names), n)
	}
}

func TestEntropyRegenerationInvalidatesOldSecrets(t *testing.T) {
	dir := t.TempDir()
	p := testStaticProtector(t)
	ctx := context.Background()

	v1, err := New(logger.Logger{}, WithDirectory(dir), WithProtector(p))
	if err != nil {
		t.Fatalf("Failed to construct first vault: %v", err)
	}
	if err := v1.Set(ctx, "orphaned", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	v1.Close()

	// Corrupt the entropy blob's ciphertext.
	entropyPath := filepath.Join(dir, entropyFileName)
	if err := os.WriteFile(entropyPath, []byte("corrupted"), 0600); err != nil {
		t.Fatalf("Failed to corrupt entropy: %v", err)
	}

	v2, err := New(logger.Logger{}, WithDirectory(dir), WithProtector(p))
	if err != nil {
		t.Fatalf("Vault construction after corruption failed: %v", err)
	}
	defer v2.Close()

	// The secret decrypts under entropy that no longer exists.
	if _, ok, err := v2.Get(ctx, "orphaned"); err != nil || ok {
		t.Errorf("Expected orphaned secret to read as absent, got (present=%t, err=%v)", ok, err)
	}

	// But its record is still on disk and still listed.
	names, err := v2.ListNames(ctx)
	if err != nil {
		t.Fatalf("ListNames failed: %v", err)
	}
	found := false
	for _, name := range names {
		if name == "orphaned" {
			found = true
		}
	}
	if !found {
		t.Errorf("ListNames should still report the orphaned record, got %v", names)
	}
}

func TestExportImportFidelity(t *testing.T) {
	v1 := newTestVault(t)
	ctx := context.Background()

	want := map[string]string{
		"license-key":  "L-123",
		"oauth secret": "O-456",
		"api base url": "https://api.example.com",
	}
	for name, value := range want {
		if err := v1.Set(ctx, name, value); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}

	exported, err := v1.ExportAll(ctx)
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}

	// Export is JSON-shaped and holds the exact mapping.
	var exportedMap map[string]string
	if err := json.Unmarshal([]byte(exported), &exportedMap); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if len(exportedMap) != len(want) {
		t.Fatalf("Export has %d entries, want %d", len(exportedMap), len(want))
	}

	v2 := newTestVault(t)
	if err := v2.ImportAll(ctx, exported); err != nil {
		t.Fatalf("ImportAll failed: %v", err)
	}
	for name, value := range want {
		got, ok, err := v2.Get(ctx, name)
		if err != nil || !ok || got != value {
			t.Errorf("Imported %q = (%q, %t, %v), want (%q, true, nil)", name, got, ok, err, value)
		}
	}
}

func TestImportAllMalformed(t *testing.T) {
	v := newTestVault(t)

	err := v.ImportAll(context.Background(), "this is not json")
	if !errors.Is(err, herrors.ErrMalformedImport) {
		t.Errorf("Expected ErrMalformedImport, got: %v", err)
	}
}

func TestTestConnection(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if !v.TestConnection(ctx) {
		t.Error("TestConnection failed on a healthy vault")
	}

	// The probe secret must not linger.
	names, _ := v.ListNames(ctx)
	if len(names) != 0 {
		t.Errorf("Connection test left records behind: %v", names)
	}
}

func TestMigrateFromEnvironment(t *testing.T) {
	aliases := []string{"HARAKEKE_TEST_LICENSE", "harakeke_test_license", "HARAKEKE_TEST_UNSET", "HARAKEKE_TEST_PLACEHOLDER"}
	v := newTestVault(t, WithMigrationAliases(aliases))
	ctx := context.Background()

	t.Setenv("HARAKEKE_TEST_LICENSE", "license-value")
	t.Setenv("HARAKEKE_TEST_PLACEHOLDER", "${LICENSE_KEY}")
	os.Unsetenv("HARAKEKE_TEST_UNSET")

	migrated, err := v.MigrateFromEnvironment(ctx)
	if err != nil {
		t.Fatalf("MigrateFromEnvironment failed: %v", err)
	}

	// Case-insensitive de-duplication: the lowercase alias is the same key.
	if len(migrated) != 1 || migrated[0] != "HARAKEKE_TEST_LICENSE" {
		t.Errorf("Migrated = %v, want [HARAKEKE_TEST_LICENSE]", migrated)
	}

	got, ok, _ := v.Get(ctx, "HARAKEKE_TEST_LICENSE")
	if !ok || got != "license-value" {
		t.Errorf("Migrated value = (%q, %t), want (license-value, true)", got, ok)
	}
	if _, ok, _ := v.Get(ctx, "HARAKEKE_TEST_PLACEHOLDER"); ok {
		t.Error("Placeholder value should have been skipped")
	}
	if _, ok, _ := v.Get(ctx, "HARAKEKE_TEST_UNSET"); ok {
		t.Error("Unset variable should have been skipped")
	}
}

func TestMigrateFromEnvironmentLowercaseAlias(t *testing.T) {
	v := newTestVault(t, WithMigrationAliases([]string{"harakeke_test_token"}))
	ctx := context.Background()

	// The variable exists only under the lowercase name, so the lookup must
	// fall back to the alias as configured.
	os.Unsetenv("HARAKEKE_TEST_TOKEN")
	t.Setenv("harakeke_test_token", "token-value")

	migrated, err := v.MigrateFromEnvironment(ctx)
	if err != nil {
		t.Fatalf("MigrateFromEnvironment failed: %v", err)
	}

	if len(migrated) != 1 || migrated[0] != "HARAKEKE_TEST_TOKEN" {
		t.Errorf("Migrated = %v, want [HARAKEKE_TEST_TOKEN]", migrated)
	}

	got, ok, _ := v.Get(ctx, "HARAKEKE_TEST_TOKEN")
	if !ok || got != "token-value" {
		t.Errorf("Migrated value = (%q, %t), want (token-value, true)", got, ok)
	}
}

func TestClosedVaultFailsFast(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if err := v.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Close is idempotent.
	if err := v.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}

	if _, _, err := v.Get(ctx, "k"); !errors.Is(err, herrors.ErrVaultClosed) {
		t.Errorf("Get after close: expected ErrVaultClosed, got %v", err)
	}
	if err := v.Set(ctx, "k", "v"); !errors.Is(err, herrors.ErrVaultClosed) {
		t.Errorf("Set after close: expected ErrVaultClosed, got %v", err)
	}
	if err := v.Delete(ctx, "k"); !errors.Is(err, herrors.ErrVaultClosed) {
		t.Errorf("Delete after close: expected ErrVaultClosed, got %v", err)
	}
	if _, err := v.ListNames(ctx); !errors.Is(err, herrors.ErrVaultClosed) {
		t.Errorf("ListNames after close: expected ErrVaultClosed, got %v", err)
	}
	if _, err := v.ExportAll(ctx); !errors.Is(err, herrors.ErrVaultClosed) {
		t.Errorf("ExportAll after close: expected ErrVaultClosed, got %v", err)
	}
	if v.TestConnection(ctx) {
		t.Error("TestConnection after close should report false")
	}
}

func TestCancelledContextRejected(t *testing.T) {
	v := newTestVault(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := v.Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got: %v", err)
	}
}

func TestSecretFileDoesNotContainPlaintext(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	const value = "super-secret-plaintext-value"
	if err := v.Set(ctx, "k", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	path := filepath.Join(v.Dir(), secretFileName("k"))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read secret file: %v", err)
	}
	if bytes.Contains(data, []byte(value)) {
		t.Error("Secret file contains plaintext")
	}
}
