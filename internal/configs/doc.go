// Package configs manages optional user configuration for Harakeke.
//
// Configuration is stored in TOML format at a single location:
//
//	<user config dir>/harakeke/harakeke.toml
//
// The file is optional. When absent, built-in defaults apply: the vault
// directory is resolved under the user's config directory and the migration
// allow-list is the built-in alias set.
//
// # Settings
//
//   - vault_dir: overrides the resolved vault directory
//   - migration_aliases: replaces the environment-variable allow-list used
//     by `harakeke vault migrate`
//
// The allow-list lives here rather than in the vault because it is
// configuration about the surrounding deployment, not vault logic.
package configs
