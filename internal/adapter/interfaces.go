// Package adapter provides the transport layer for talking to the remote
// sync API.
//
// The primary abstraction is [SyncTransport], which decouples the engine
// from the wire protocol. The package ships an HTTPS/JSON implementation
// ([NewHTTPSyncTransport]) with exponential-backoff retries and automatic
// token refresh on authentication expiry.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrForbidden] for 403, [ErrUnauthorized] for 401).
package adapter

import (
	"context"

	"github.com/ortano/docsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/adapter_mock.go -package=mock

// SyncTransport defines transport-agnostic communication with the remote
// sync API. Implementations are responsible for serialisation,
// authentication header management, retry, and mapping transport-level
// errors to the sentinel values defined in this package.
type SyncTransport interface {
	// Push uploads a batch of pending mutations. The server replies with
	// per-operation outcomes: acknowledged, conflicted, or failed.
	Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error)

	// Pull fetches one page of remote changes after the given cursor.
	Pull(ctx context.Context, req models.PullRequest) (models.PullResponse, error)
}

// TokenProvider supplies bearer tokens for authenticated requests.
type TokenProvider interface {
	// AccessToken returns a token believed to be valid, fetching or
	// refreshing one if needed.
	AccessToken(ctx context.Context) (string, error)

	// Refresh discards any cached token and obtains a fresh one. The
	// transport calls it once after a 401 before retrying the request.
	Refresh(ctx context.Context) (string, error)
}

// TokenSource is the upstream credential exchange a [TokenProvider] draws
// from, typically the application's auth client.
type TokenSource interface {
	// FetchToken obtains a new bearer token.
	FetchToken(ctx context.Context) (string, error)
}
