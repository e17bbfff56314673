package protect

import "fmt"

// StaticProtector implements Protector with fixed in-memory master keys.
// It runs the same sealing pipeline as OSProtector without touching the OS
// keyring, which keeps tests hermetic and gives embedders a deterministic
// protector when the platform has neither a keychain nor a secret service.
type StaticProtector struct {
	userMaster    []byte
	machineMaster []byte
}

// NewStaticProtector returns a protector with the given master keys.
func NewStaticProtector(userMaster, machineMaster []byte) *StaticProtector {
	return &StaticProtector{userMaster: userMaster, machineMaster: machineMaster}
}

// Protect encrypts plain under the given scope.
func (p *StaticProtector) Protect(plain, entropy []byte, scope Scope) ([]byte, error) {
	master, err := p.master(scope)
	if err != nil {
		return nil, err
	}
	return seal(master, plain, entropy, scope)
}

// Unprotect decrypts cipher under the given scope.
func (p *StaticProtector) Unprotect(cipher, entropy []byte, scope Scope) ([]byte, error) {
	master, err := p.master(scope)
	if err != nil {
		return nil, err
	}
	return open(master, cipher, entropy, scope)
}

func (p *StaticProtector) master(scope Scope) ([]byte, error) {
	switch scope {
	case ScopeCurrentUser:
		return p.userMaster, nil
	case ScopeLocalMachine:
		return p.machineMaster, nil
	default:
		return nil, fmt.Errorf("unsupported protection scope: %v", scope)
	}
}
