package vault

// defaultMigrationAliases is the built-in allow-list of environment-variable
// names consumed by MigrateFromEnvironment. Deployments can replace it via
// WithMigrationAliases or the harakeke.toml settings file; the list is
// configuration about the surrounding deployment, not vault logic.
var defaultMigrationAliases = []string{
	"HARAKEKE_LICENSE_KEY",
	"LICENSE_KEY",
	"OAUTH_CLIENT_ID",
	"OAUTH_CLIENT_SECRET",
	"OAUTH_REDIRECT_URI",
	"OAUTH_ENVIRONMENT",
	"OPENAI_API_KEY",
	"ANTHROPIC_API_KEY",
	"AI_API_KEY",
	"API_BASE_URL",
	"SERVICE_BASE_URL",
}
