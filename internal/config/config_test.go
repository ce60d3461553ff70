package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBase() *StructuredConfig {
	return &StructuredConfig{
		Adapter: Adapter{Endpoint: "https://sync.example.com"},
		Storage: Storage{DB: DB{DSN: "/tmp/docsync.db"}},
	}
}

func TestValidate_RequiresEndpoint(t *testing.T) {
	cfg := validBase()
	cfg.Adapter.Endpoint = ""

	err := cfg.validate()
	require.ErrorIs(t, err, ErrInvalidAdapterConfigs)
}

func TestValidate_RejectsPlainHTTP(t *testing.T) {
	cfg := validBase()
	cfg.Adapter.Endpoint = "http://sync.example.com"

	err := cfg.validate()
	require.ErrorIs(t, err, ErrInsecureEndpoint)
}

func TestValidate_AllowsPlainHTTPWithOverride(t *testing.T) {
	cfg := validBase()
	cfg.Adapter.Endpoint = "http://localhost:8080"
	cfg.Adapter.AllowInsecureHTTP = true

	require.NoError(t, cfg.validate())
}

func TestValidate_RequiresDSN(t *testing.T) {
	cfg := validBase()
	cfg.Storage.DB.DSN = ""

	err := cfg.validate()
	require.ErrorIs(t, err, ErrInvalidStorageConfigs)
}

func TestValidate_AppliesDefaults(t *testing.T) {
	cfg := validBase()
	require.NoError(t, cfg.validate())

	assert.Equal(t, DefaultRequestTimeout, cfg.Adapter.RequestTimeout)
	assert.Equal(t, DefaultMaxAttempts, cfg.Adapter.MaxAttempts)
	assert.Equal(t, DefaultBackoffCap, cfg.Adapter.BackoffCap)
	assert.Equal(t, DefaultBatchSize, cfg.Sync.BatchSize)
	assert.Equal(t, DefaultPullLimit, cfg.Sync.PullLimit)
	assert.Equal(t, DefaultDebounce, cfg.Sync.Debounce)
	assert.Equal(t, DefaultRetention, cfg.Sync.Retention)
	assert.Equal(t, DefaultMaxFailures, cfg.Sync.MaxFailures)
	assert.Equal(t, DefaultRetryBackoffCap, cfg.Sync.RetryBackoffCap)
	assert.Equal(t, DefaultSyncInterval, cfg.Sync.Interval)
}

func TestValidate_KeepsExplicitValues(t *testing.T) {
	cfg := validBase()
	cfg.Sync.BatchSize = 10
	cfg.Sync.Retention = 24 * time.Hour

	require.NoError(t, cfg.validate())
	assert.Equal(t, 10, cfg.Sync.BatchSize)
	assert.Equal(t, 24*time.Hour, cfg.Sync.Retention)
}

func TestParseEnv_ReadsAdapterSection(t *testing.T) {
	t.Setenv("ADAPTER_ENDPOINT", "https://env.example.com")
	t.Setenv("ADAPTER_REQUEST_TIMEOUT", "7s")
	t.Setenv("SYNC_BATCH_SIZE", "25")
	t.Setenv("STORAGE_DB_DSN", "/data/sync.db")
	t.Setenv("STATUS_ADDRESS", "127.0.0.1:7411")

	cfg := &StructuredConfig{}
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "https://env.example.com", cfg.Adapter.Endpoint)
	assert.Equal(t, 7*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 25, cfg.Sync.BatchSize)
	assert.Equal(t, "/data/sync.db", cfg.Storage.DB.DSN)
	assert.Equal(t, "127.0.0.1:7411", cfg.Status.Address)
}

func TestParseJSON_ReadsAllSections(t *testing.T) {
	raw := map[string]any{
		"adapter": map[string]any{
			"endpoint":        "https://json.example.com",
			"request_timeout": "12s",
			"max_attempts":    6,
		},
		"storage": map[string]any{"db": map[string]any{"dsn": "/json/sync.db"}},
		"sync": map[string]any{
			"pull_limit": 77,
			"retention":  "720h",
		},
		"status": map[string]any{"address": "localhost:9999"},
	}
	data, err := json.Marshal(raw)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "https://json.example.com", cfg.Adapter.Endpoint)
	assert.Equal(t, 12*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, 6, cfg.Adapter.MaxAttempts)
	assert.Equal(t, "/json/sync.db", cfg.Storage.DB.DSN)
	assert.Equal(t, 77, cfg.Sync.PullLimit)
	assert.Equal(t, 30*24*time.Hour, cfg.Sync.Retention)
	assert.Equal(t, "localhost:9999", cfg.Status.Address)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestDuration_UnmarshalVariants(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"90s"`), &d))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, time.Duration(d))

	require.Error(t, json.Unmarshal([]byte(`"ninety"`), &d))
}

func TestBuilder_MergesEnvOverJSON(t *testing.T) {
	raw := `{"adapter":{"endpoint":"https://json.example.com"},"storage":{"db":{"dsn":"/json.db"}}}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	t.Setenv("ADAPTER_ENDPOINT", "https://env-wins.example.com")

	b := newConfigBuilder().withEnv()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: path})
	cfg, err := b.withJSON().build()
	require.NoError(t, err)

	// mergo keeps the first non-zero value, so env beats the JSON file.
	assert.Equal(t, "https://env-wins.example.com", cfg.Adapter.Endpoint)
	assert.Equal(t, "/json.db", cfg.Storage.DB.DSN)
}
