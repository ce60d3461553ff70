package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-endpoint remote sync API base URL (https)
//	-d local sqlite database path
//	-c/-config json file path with configs
//	-request-timeout per-attempt request timeout (e.g. "30s")
//	-max-attempts transport retry ceiling
//	-backoff-cap transport backoff delay cap
//	-allow-insecure-http permit a plain http endpoint (dev only)
//	-auth-token bearer credential for the sync API
//	-batch-size push batch size
//	-pull-limit pull page size
//	-debounce trigger debounce window
//	-retention synced-tombstone retention window
//	-max-failures consecutive-failure ceiling for automatic retry
//	-sync-interval background trigger tick
//	-status-address status API listen address host:port
func ParseFlags() *StructuredConfig {
	var endpoint string
	var databaseDSN string
	var jsonConfigPath string
	var requestTimeout time.Duration
	var maxAttempts int
	var backoffCap time.Duration
	var allowInsecureHTTP bool
	var authToken string
	var batchSize, pullLimit int
	var debounce, retention time.Duration
	var maxFailures int
	var retryBackoffCap time.Duration
	var syncInterval time.Duration
	var statusAddress string

	flag.StringVar(&endpoint, "endpoint", "", "Remote sync API base URL")
	flag.StringVar(&databaseDSN, "d", "", "Local sqlite database path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.IntVar(&maxAttempts, "max-attempts", 0, "Transport retry ceiling")
	flag.DurationVar(&backoffCap, "backoff-cap", 0, "Transport backoff delay cap")
	flag.BoolVar(&allowInsecureHTTP, "allow-insecure-http", false, "Permit plain http endpoint (dev only)")
	flag.StringVar(&authToken, "auth-token", "", "Bearer credential for the sync API")
	flag.IntVar(&batchSize, "batch-size", 0, "Push batch size")
	flag.IntVar(&pullLimit, "pull-limit", 0, "Pull page size")
	flag.DurationVar(&debounce, "debounce", 0, "Trigger debounce window")
	flag.DurationVar(&retention, "retention", 0, "Synced-tombstone retention window")
	flag.IntVar(&maxFailures, "max-failures", 0, "Consecutive-failure ceiling for automatic retry")
	flag.DurationVar(&retryBackoffCap, "retry-backoff-cap", 0, "Automatic-retry delay cap")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background trigger tick")
	flag.StringVar(&statusAddress, "status-address", "", "Status API listen address host:port")

	flag.Parse()

	return &StructuredConfig{
		Adapter: Adapter{
			Endpoint:          endpoint,
			RequestTimeout:    requestTimeout,
			MaxAttempts:       maxAttempts,
			BackoffCap:        backoffCap,
			AllowInsecureHTTP: allowInsecureHTTP,
			AuthToken:         authToken,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Sync: Sync{
			BatchSize:       batchSize,
			PullLimit:       pullLimit,
			Debounce:        debounce,
			Retention:       retention,
			MaxFailures:     maxFailures,
			RetryBackoffCap: retryBackoffCap,
			Interval:        syncInterval,
		},
		Status: Status{
			Address: statusAddress,
		},
		JSONFilePath: jsonConfigPath,
	}
}
