package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ortano/docsync/internal/config"
	"github.com/ortano/docsync/internal/logger"
	"github.com/ortano/docsync/models"
)

type httpSyncTransport struct {
	client *resty.Client
	tokens TokenProvider

	maxAttempts int
	backoffBase time.Duration
	backoffCap  time.Duration

	logger *logger.Logger
}

// NewHTTPSyncTransport constructs the HTTPS/JSON implementation of
// [SyncTransport]. It normalises and validates the base URL from
// cfg.Endpoint and configures the underlying HTTP client with the resolved
// base URL and per-attempt request timeout.
//
// Returns an error if cfg.Endpoint is empty, cannot be parsed as a URL, or
// is not HTTPS while cfg.AllowInsecureHTTP is off.
func NewHTTPSyncTransport(cfg config.Adapter, tokens TokenProvider, log *logger.Logger) (SyncTransport, error) {
	baseURL, err := normalizeBaseURL(cfg.Endpoint, cfg.AllowInsecureHTTP)
	if err != nil {
		return nil, fmt.Errorf("invalid sync endpoint: %w", err)
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = config.DefaultMaxAttempts
	}

	return &httpSyncTransport{
		client:      client,
		tokens:      tokens,
		maxAttempts: maxAttempts,
		backoffBase: time.Second,
		backoffCap:  cfg.BackoffCap,
		logger:      log,
	}, nil
}

func normalizeBaseURL(raw string, allowInsecure bool) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}
	if u.Scheme != "https" && !allowInsecure {
		return "", fmt.Errorf("%w: got %s", ErrInsecureEndpoint, u.Scheme)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Push implements [SyncTransport]. It POSTs the mutation batch to
// POST /api/sync/push.
func (h *httpSyncTransport) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	var resp models.PushResponse
	if err := h.doJSON(ctx, "/api/sync/push", req, &resp); err != nil {
		return models.PushResponse{}, fmt.Errorf("push request: %w", err)
	}
	return resp, nil
}

// Pull implements [SyncTransport]. It POSTs the cursor to
// POST /api/sync/pull and returns one page of changes.
func (h *httpSyncTransport) Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error) {
	var resp models.PullResponse
	if err := h.doJSON(ctx, "/api/sync/pull", req, &resp); err != nil {
		return models.PullResponse{}, fmt.Errorf("pull request: %w", err)
	}
	return resp, nil
}

// doJSON executes one authenticated JSON round trip with retries. The retry
// budget covers transport failures and retryable statuses; a 401 grants a
// single token refresh before the request is replayed, and a 403 aborts
// immediately.
func (h *httpSyncTransport) doJSON(ctx context.Context, path string, body, out any) error {
	refreshed := false

	var lastErr error
	for attempt := 1; attempt <= h.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, backoffDelay(attempt-1, h.backoffBase, h.backoffCap)); err != nil {
				return err
			}
		}

		token, err := h.tokens.AccessToken(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrTokenSource, err)
		}

		resp, err := h.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetAuthToken(token).
			SetBody(body).
			Post(path)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = fmt.Errorf("%w: %w", errTransport, err)
			h.logger.Warn().
				Str("func", "httpSyncTransport.doJSON").
				Str("path", path).
				Int("attempt", attempt).
				Err(err).
				Msg("request failed, will retry")
			continue
		}

		if err = mapHTTPError(resp); err != nil {
			switch {
			case errors.Is(err, ErrUnauthorized) && !refreshed:
				refreshed = true
				if _, refreshErr := h.tokens.Refresh(ctx); refreshErr != nil {
					return fmt.Errorf("%w: %w", ErrTokenSource, refreshErr)
				}
				// The refresh retry does not consume a backoff attempt.
				attempt--
				continue
			case retryable(err):
				lastErr = err
				h.logger.Warn().
					Str("func", "httpSyncTransport.doJSON").
					Str("path", path).
					Int("attempt", attempt).
					Int("status", resp.StatusCode()).
					Msg("retryable status, will retry")
				continue
			default:
				return err
			}
		}

		if err = json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
		return nil
	}

	return lastErr
}
