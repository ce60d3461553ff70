package config

import "strings"

// validate checks that the final merged [StructuredConfig] satisfies the
// engine's startup invariants and fills defaults for optional knobs.
//
// Returns nil if the configuration is valid, or a descriptive sentinel error
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Adapter.Endpoint == "" {
		return ErrInvalidAdapterConfigs
	}
	if !cfg.Adapter.AllowInsecureHTTP && !strings.HasPrefix(cfg.Adapter.Endpoint, "https://") {
		return ErrInsecureEndpoint
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	cfg.applyDefaults()
	return nil
}

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Adapter.RequestTimeout <= 0 {
		cfg.Adapter.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Adapter.MaxAttempts <= 0 {
		cfg.Adapter.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Adapter.BackoffCap <= 0 {
		cfg.Adapter.BackoffCap = DefaultBackoffCap
	}
	if cfg.Sync.BatchSize <= 0 {
		cfg.Sync.BatchSize = DefaultBatchSize
	}
	if cfg.Sync.PullLimit <= 0 {
		cfg.Sync.PullLimit = DefaultPullLimit
	}
	if cfg.Sync.Debounce <= 0 {
		cfg.Sync.Debounce = DefaultDebounce
	}
	if cfg.Sync.Retention <= 0 {
		cfg.Sync.Retention = DefaultRetention
	}
	if cfg.Sync.MaxFailures <= 0 {
		cfg.Sync.MaxFailures = DefaultMaxFailures
	}
	if cfg.Sync.RetryBackoffCap <= 0 {
		cfg.Sync.RetryBackoffCap = DefaultRetryBackoffCap
	}
	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = DefaultSyncInterval
	}
}
