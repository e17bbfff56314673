package configs

import (
	"fmt"
	"os"
	"path/filepath"
)

// Settings holds user-adjustable configuration for the vault.
//
// All fields are optional; zero values mean "use the built-in default".
type Settings struct {
	// VaultDir overrides the resolved vault directory.
	VaultDir string `toml:"vault_dir"`

	// MigrationAliases replaces the built-in environment-variable allow-list
	// consumed by `harakeke vault migrate`.
	MigrationAliases []string `toml:"migration_aliases"`
}

// DefaultSettingsPath returns the expected location of harakeke.toml inside
// the user's config directory.
func DefaultSettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config directory: %w", err)
	}
	return filepath.Join(configDir, "harakeke", "harakeke.toml"), nil
}

// LoadSettings reads settings from the given path. A missing file is not an
// error; it yields zero-value settings so built-in defaults apply.
func LoadSettings(path string) (Settings, error) {
	var settings Settings
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return settings, nil
	}
	if err := LoadTOML(path, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings at %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings writes settings to the given path, creating parent
// directories as needed.
func SaveSettings(path string, settings Settings) error {
	if err := SaveTOML(path, settings); err != nil {
		return fmt.Errorf("failed to save settings to %s: %w", path, err)
	}
	return nil
}
