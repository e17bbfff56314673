package protect

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	herrors "github.com/harakeke-dev/harakeke/internal/errors"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "harakeke"
	keyringAccount = "vault-master-key"
	masterKeySize  = 32
)

// machineIDPaths are probed in order for a stable machine identity.
var machineIDPaths = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
	"/etc/hostid",
}

// OSProtector implements Protector on top of the operating system.
//
// ScopeCurrentUser uses a random master key stored in the user's OS keychain
// or secret service (created lazily on first use, never written into the
// vault directory). ScopeLocalMachine derives its master from the machine
// identity, a software key-wrap used only for the entropy blob.
type OSProtector struct {
	mu            sync.Mutex
	userMaster    []byte
	machineMaster []byte
}

// NewOSProtector returns a protector backed by the OS keychain.
func NewOSProtector() *OSProtector {
	return &OSProtector{}
}

// Protect encrypts plain under the given scope.
func (p *OSProtector) Protect(plain, entropy []byte, scope Scope) ([]byte, error) {
	master, err := p.master(scope)
	if err != nil {
		return nil, err
	}
	return seal(master, plain, entropy, scope)
}

// Unprotect decrypts cipher under the given scope.
func (p *OSProtector) Unprotect(cipher, entropy []byte, scope Scope) ([]byte, error) {
	master, err := p.master(scope)
	if err != nil {
		return nil, err
	}
	return open(master, cipher, entropy, scope)
}

func (p *OSProtector) master(scope Scope) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch scope {
	case ScopeCurrentUser:
		if p.userMaster == nil {
			master, err := loadOrCreateKeyringMaster()
			if err != nil {
				return nil, err
			}
			p.userMaster = master
		}
		return p.userMaster, nil
	case ScopeLocalMachine:
		if p.machineMaster == nil {
			p.machineMaster = machineMaster()
		}
		return p.machineMaster, nil
	default:
		return nil, fmt.Errorf("unsupported protection scope: %v", scope)
	}
}

// loadOrCreateKeyringMaster fetches the user master key from the OS keyring,
// generating and storing one on first use.
func loadOrCreateKeyringMaster() ([]byte, error) {
	stored, err := keyring.Get(keyringService, keyringAccount)
	if err == nil {
		master, decodeErr := base64.StdEncoding.DecodeString(stored)
		if decodeErr != nil || len(master) != masterKeySize {
			return nil, fmt.Errorf("%w: keyring master key is corrupt", herrors.ErrUnprotectFailed)
		}
		return master, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return nil, fmt.Errorf("failed to read master key from keyring: %w", err)
	}

	master := make([]byte, masterKeySize)
	if _, err := rand.Read(master); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	if err := keyring.Set(keyringService, keyringAccount, base64.StdEncoding.EncodeToString(master)); err != nil {
		return nil, fmt.Errorf("failed to store master key in keyring: %w", err)
	}
	return master, nil
}

// machineMaster derives a machine-scope master key from the machine identity.
// Falls back to the hostname when no machine-id file is readable, which is
// weaker but still stable across reboots.
func machineMaster() []byte {
	var id string
	for _, path := range machineIDPaths {
		data, err := os.ReadFile(path)
		if err == nil && len(strings.TrimSpace(string(data))) > 0 {
			id = strings.TrimSpace(string(data))
			break
		}
	}
	if id == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "harakeke-fallback-host"
		}
		id = hostname
	}

	sum := sha256.Sum256([]byte("harakeke-machine-v1:" + id))
	return sum[:]
}
