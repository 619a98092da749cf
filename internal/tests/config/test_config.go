package config

import (
	"net"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"

	"github.com/you/dairyshell/internal/config"
)

// LoadTestConfig loads configuration for E2E tests through the regular
// loader, after SetupTestEnvironment has pointed it at test resources.
func LoadTestConfig(t *testing.T, overrides map[string]string) *config.Config {
	t.Helper()

	// .env.test is optional
	if err := godotenv.Load(".env.test"); err != nil {
		t.Logf("No .env.test file: %v", err)
	}

	SetupTestEnvironment(t, overrides)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Failed to load test configuration: %v", err)
	}

	t.Logf("Test config loaded - listen: %s, storage: %s", cfg.ListenAddr, cfg.StorageDriver)
	return cfg
}

// SetupTestEnvironment sets environment variables for the test duration.
// Overrides replace the defaults below.
func SetupTestEnvironment(t *testing.T, overrides map[string]string) {
	t.Helper()

	dir := t.TempDir()
	testEnvVars := map[string]string{
		"GIN_MODE":              "test",
		"DAIRY_CONFIG":          filepath.Join(dir, "missing.yml"),
		"DAIRY_LISTEN_ADDR":     FreeAddr(t),
		"DAIRY_LOG_LEVEL":       "error",
		"DAIRY_STORAGE_DRIVER":  config.DriverSQLite,
		"DAIRY_STORAGE_PATH":    filepath.Join(dir, "device.db"),
		"DAIRY_STORAGE_TIMEOUT": "2s",
		"DAIRY_API_TIMEOUT":     "5s",
	}
	for k, v := range overrides {
		testEnvVars[k] = v
	}

	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}
}

// FreeAddr returns a loopback address with a port nothing listens on
func FreeAddr(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve a port: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}
