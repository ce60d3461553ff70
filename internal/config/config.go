package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the sync
// engine. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Adapter holds the remote endpoint and transport retry settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds local persistence settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Sync holds engine tuning: batch sizes, debounce, retention, backoff.
	Sync Sync `envPrefix:"SYNC_"`

	// Status holds the local observability HTTP API settings.
	Status Status `envPrefix:"STATUS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Adapter holds network settings for the outbound transport client.
type Adapter struct {
	// Endpoint is the remote sync API base URL. Must be HTTPS unless
	// AllowInsecureHTTP is set.
	// Env: ADAPTER_ENDPOINT
	Endpoint string `env:"ENDPOINT"`

	// RequestTimeout is the per-attempt timeout for outbound requests
	// (e.g. "30s", "1m").
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// MaxAttempts is the retry ceiling for retryable transport failures.
	// Env: ADAPTER_MAX_ATTEMPTS
	MaxAttempts int `env:"MAX_ATTEMPTS"`

	// BackoffCap bounds the exponential backoff delay between attempts.
	// Env: ADAPTER_BACKOFF_CAP
	BackoffCap time.Duration `env:"BACKOFF_CAP"`

	// AllowInsecureHTTP permits a plain http:// endpoint. Development and
	// test use only.
	// Env: ADAPTER_ALLOW_INSECURE_HTTP
	AllowInsecureHTTP bool `env:"ALLOW_INSECURE_HTTP"`

	// AuthToken is the bearer credential presented to the sync API. When it
	// is a JWT its expiry drives the provider's refresh cadence; opaque
	// tokens are used as-is.
	// Env: ADAPTER_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`
}

// Storage holds local database settings.
type Storage struct {
	// DB holds the SQLite connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite database file path.
	// Env: STORAGE_DB_DSN
	DSN string `env:"DSN"`
}

// Sync holds engine tuning knobs.
type Sync struct {
	// BatchSize is the maximum number of pending mutations drained per push.
	// Env: SYNC_BATCH_SIZE
	BatchSize int `env:"BATCH_SIZE"`

	// PullLimit is the page size requested from the server's change stream.
	// Env: SYNC_PULL_LIMIT
	PullLimit int `env:"PULL_LIMIT"`

	// Debounce is the trigger-coalescing window before a cycle starts.
	// Env: SYNC_DEBOUNCE
	Debounce time.Duration `env:"DEBOUNCE"`

	// Retention is how long synced tombstones are kept before compaction.
	// Env: SYNC_RETENTION
	Retention time.Duration `env:"RETENTION"`

	// MaxFailures caps consecutive failed cycles after which automatic
	// retries stop (manual retry stays possible).
	// Env: SYNC_MAX_FAILURES
	MaxFailures int `env:"MAX_FAILURES"`

	// RetryBackoffCap bounds the automatic-retry delay after failed cycles.
	// Env: SYNC_RETRY_BACKOFF_CAP
	RetryBackoffCap time.Duration `env:"RETRY_BACKOFF_CAP"`

	// Interval is the background tick between unsolicited sync triggers.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`
}

// Status holds settings for the local status/observability API.
type Status struct {
	// Address is the TCP address the status HTTP server listens on, in
	// "host:port" format. Empty disables the server.
	// Env: STATUS_ADDRESS
	Address string `env:"ADDRESS"`
}

// Defaults applied by validate for optional knobs left unset.
const (
	DefaultRequestTimeout  = 15 * time.Second
	DefaultMaxAttempts     = 4
	DefaultBackoffCap      = 30 * time.Second
	DefaultBatchSize       = 50
	DefaultPullLimit       = 200
	DefaultDebounce        = 500 * time.Millisecond
	DefaultRetention       = 30 * 24 * time.Hour
	DefaultMaxFailures     = 8
	DefaultRetryBackoffCap = 5 * time.Minute
	DefaultSyncInterval    = 5 * time.Minute
)

// GetConfig loads, merges, and validates the engine configuration from all
// available sources in the following priority order (first non-zero value
// wins):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
