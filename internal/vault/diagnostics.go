package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	herrors "github.com/harakeke-dev/harakeke/internal/errors"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check. It never carries
// secret values.
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
}

// DiagnosticsReport holds the results of every vault health check.
type DiagnosticsReport struct {
	Directory string        `json:"directory"`
	Checks    []CheckResult `json:"checks"`
}

// Render formats the report as human-readable text.
func (r *DiagnosticsReport) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Vault directory: %s\n", r.Directory)
	for _, check := range r.Checks {
		marker := "✓"
		switch check.Status {
		case CheckWarning:
			marker = "⚠"
		case CheckError:
			marker = "✗"
		}
		fmt.Fprintf(&b, "%s %s: %s\n", marker, check.Name, check.Message)
	}
	return b.String()
}

// Diagnose runs every vault health check and returns the structured report.
func (v *Vault) Diagnose(ctx context.Context) (*DiagnosticsReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil, herrors.ErrVaultClosed
	}

	checks := []func() CheckResult{
		v.checkDirectory,
		v.checkEntropy,
		v.checkSecretCount,
		v.checkWritable,
		v.checkConnection,
	}

	report := &DiagnosticsReport{Directory: v.dir}
	for _, check := range checks {
		report.Checks = append(report.Checks, check())
	}
	return report, nil
}

// Diagnostics runs every health check and renders a human-readable report.
func (v *Vault) Diagnostics(ctx context.Context) (string, error) {
	report, err := v.Diagnose(ctx)
	if err != nil {
		return "", err
	}
	return report.Render(), nil
}

func (v *Vault) checkDirectory() CheckResult {
	info, err := os.Stat(v.dir)
	if err != nil {
		return CheckResult{Name: "directory", Status: CheckError, Message: fmt.Sprintf("not accessible: %v", err)}
	}
	if !info.IsDir() {
		return CheckResult{Name: "directory", Status: CheckError, Message: "path exists but is not a directory"}
	}
	return CheckResult{Name: "directory", Status: CheckPass, Message: "exists"}
}

func (v *Vault) checkEntropy() CheckResult {
	if len(v.entropy) != entropySize {
		return CheckResult{Name: "entropy", Status: CheckError, Message: "entropy cache has unexpected length"}
	}
	if _, err := os.Stat(filepath.Join(v.dir, entropyFileName)); err != nil {
		return CheckResult{Name: "entropy", Status: CheckWarning, Message: "entropy file missing on disk; it will be regenerated and stored secrets will be lost"}
	}
	return CheckResult{Name: "entropy", Status: CheckPass, Message: "present"}
}

func (v *Vault) checkSecretCount() CheckResult {
	names, err := v.listLocked()
	if err != nil {
		return CheckResult{Name: "secrets", Status: CheckError, Message: fmt.Sprintf("failed to list: %v", err)}
	}
	return CheckResult{Name: "secrets", Status: CheckPass, Message: fmt.Sprintf("%d stored", len(names))}
}

func (v *Vault) checkWritable() CheckResult {
	if err := probeWrite(v.dir); err != nil {
		return CheckResult{Name: "write-permission", Status: CheckError, Message: fmt.Sprintf("write probe failed: %v", err)}
	}
	return CheckResult{Name: "write-permission", Status: CheckPass, Message: "writable"}
}

func (v *Vault) checkConnection() CheckResult {
	if !v.testConnectionLocked() {
		return CheckResult{Name: "connection-test", Status: CheckError, Message: "round trip failed"}
	}
	return CheckResult{Name: "connection-test", Status: CheckPass, Message: "round trip succeeded"}
}
