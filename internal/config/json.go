package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] for JSON file parsing.
// Durations accept both "30s"-style strings and nanosecond numbers.
type StructuredJSONConfig struct {
	Adapter struct {
		Endpoint          string   `json:"endpoint"`
		RequestTimeout    Duration `json:"request_timeout"`
		MaxAttempts       int      `json:"max_attempts"`
		BackoffCap        Duration `json:"backoff_cap"`
		AllowInsecureHTTP bool     `json:"allow_insecure_http"`
		AuthToken         string   `json:"auth_token"`
	} `json:"adapter,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		BatchSize       int      `json:"batch_size"`
		PullLimit       int      `json:"pull_limit"`
		Debounce        Duration `json:"debounce"`
		Retention       Duration `json:"retention"`
		MaxFailures     int      `json:"max_failures"`
		RetryBackoffCap Duration `json:"retry_backoff_cap"`
		Interval        Duration `json:"interval"`
	} `json:"sync,omitempty"`

	Status struct {
		Address string `json:"address"`
	} `json:"status,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Adapter: Adapter{
			Endpoint:          jsonCfg.Adapter.Endpoint,
			RequestTimeout:    time.Duration(jsonCfg.Adapter.RequestTimeout),
			MaxAttempts:       jsonCfg.Adapter.MaxAttempts,
			BackoffCap:        time.Duration(jsonCfg.Adapter.BackoffCap),
			AllowInsecureHTTP: jsonCfg.Adapter.AllowInsecureHTTP,
			AuthToken:         jsonCfg.Adapter.AuthToken,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Sync: Sync{
			BatchSize:       jsonCfg.Sync.BatchSize,
			PullLimit:       jsonCfg.Sync.PullLimit,
			Debounce:        time.Duration(jsonCfg.Sync.Debounce),
			Retention:       time.Duration(jsonCfg.Sync.Retention),
			MaxFailures:     jsonCfg.Sync.MaxFailures,
			RetryBackoffCap: time.Duration(jsonCfg.Sync.RetryBackoffCap),
			Interval:        time.Duration(jsonCfg.Sync.Interval),
		},
		Status: Status{
			Address: jsonCfg.Status.Address,
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
