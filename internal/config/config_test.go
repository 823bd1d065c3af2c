package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "memory")
	chdir(t, t.TempDir())

	cfg := New()
	assert.Equal(t, "orders", cfg.Worksheet)
	assert.Equal(t, "creds.json", cfg.CredentialsFile)
	assert.Equal(t, 10, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.ReplicaInterval)
	require.NoError(t, cfg.Validate())
}

func TestNewFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SPREADSHEET_ID", "sheet-123")
	t.Setenv("WORKSHEET", "april")
	t.Setenv("STORE_BACKEND", "sheets")
	t.Setenv("MAX_ATTEMPTS", "3")
	t.Setenv("REPLICA_INTERVAL", "5s")

	cfg := New()
	assert.Equal(t, "sheet-123", cfg.SpreadsheetID)
	assert.Equal(t, "april", cfg.Worksheet)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.ReplicaInterval)
	require.NoError(t, cfg.Validate())
}

func TestMalformedValuesFallBack(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MAX_ATTEMPTS", "lots")
	t.Setenv("REPLICA_INTERVAL", "soon")

	cfg := New()
	assert.Equal(t, 10, cfg.MaxAttempts)
	assert.Equal(t, 30*time.Second, cfg.ReplicaInterval)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"sheets without id", Config{StoreBackend: BackendSheets, MaxAttempts: 1}, false},
		{"postgres without uri", Config{StoreBackend: BackendPostgres, MaxAttempts: 1}, false},
		{"postgres", Config{StoreBackend: BackendPostgres, DatabaseURI: "postgres://x", MaxAttempts: 1}, true},
		{"unknown backend", Config{StoreBackend: "excel", MaxAttempts: 1}, false},
		{"zero attempts", Config{StoreBackend: BackendMemory}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
