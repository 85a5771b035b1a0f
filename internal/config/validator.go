package config

import (
	"fmt"
	"os"
	"strings"
)

// ExpectedEnvSchemaVersion is the .env layout version this build understands
const ExpectedEnvSchemaVersion = "1.0"

// Example values shipped in .env.example that must not reach production
const (
	exampleDBPassword = "change_this_secure_password"
	exampleAPIKey     = "generate_with_openssl_rand_hex_32"
)

// RequiredEnvVars lists the variables that must be set for a store backend
func RequiredEnvVars(storeBackend string) []string {
	required := []string{"API_KEY"}
	if storeBackend == BackendPostgres {
		required = append(required, "DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME")
	}
	return required
}

// ValidateEnv checks the schema version, when one is declared, and that every
// variable the store backend needs is set
func ValidateEnv(storeBackend string) error {
	if err := checkSchemaVersion(); err != nil {
		return err
	}

	var missing []string
	for _, envVar := range RequiredEnvVars(storeBackend) {
		if os.Getenv(envVar) == "" {
			missing = append(missing, envVar)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// checkSchemaVersion accepts an unset version so plain environments keep working
func checkSchemaVersion() error {
	schemaVersion, ok := os.LookupEnv("ENV_SCHEMA_VERSION")
	if !ok || schemaVersion == ExpectedEnvSchemaVersion {
		return nil
	}
	return fmt.Errorf("ENV_SCHEMA_VERSION mismatch: expected %s, got %s - your .env file may be outdated", ExpectedEnvSchemaVersion, schemaVersion)
}

// Warnings reports settings that work but should not be used in production
func (c *Config) Warnings() []string {
	var warnings []string

	if c.StoreBackend == BackendPostgres && c.DBPassword == exampleDBPassword {
		warnings = append(warnings, "DB_PASSWORD appears to be using the example value - please use a secure password")
	}
	if c.APIKey == exampleAPIKey {
		warnings = append(warnings, "API_KEY appears to be using the example value - generate a secure key with: openssl rand -hex 32")
	}
	if c.Environment == "production" && c.StoreBackend == BackendMemory {
		warnings = append(warnings, "STORE_BACKEND=memory in production - balances and claims are lost on restart")
	}
	if c.VaultEnabled() && c.GuardBackend == BackendMemory && c.Environment == "production" {
		warnings = append(warnings, "GUARD_BACKEND=memory in production - in-flight and cooldown state is per replica")
	}
	if c.VaultProgramID != "" && !c.VaultEnabled() {
		warnings = append(warnings, "VAULT_PROGRAM_ID is set but no signer is configured - vault operations are disabled")
	}
	return warnings
}
