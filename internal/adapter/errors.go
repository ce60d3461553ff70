package adapter

import "errors"

var (
	// ErrInsecureEndpoint is returned at construction time when the
	// configured endpoint is not HTTPS and the insecure override is off.
	ErrInsecureEndpoint = errors.New("endpoint must use https")

	// ErrUnauthorized maps HTTP 401 after the single token refresh retry
	// has been spent.
	ErrUnauthorized = errors.New("client unauthorized")

	// ErrForbidden maps HTTP 403. Never retried: the credentials are valid
	// but the account is not allowed to sync.
	ErrForbidden = errors.New("sync forbidden for this account")

	// ErrBadRequest maps HTTP 400.
	ErrBadRequest = errors.New("bad request")

	// ErrNotFound maps HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrServerUnavailable maps HTTP 408, 429 and all 5xx statuses. A
	// request failing with it was retried up to the configured ceiling.
	ErrServerUnavailable = errors.New("server unavailable")

	// ErrDecode is returned when a 2xx response body cannot be decoded.
	// Never retried: replaying the request would not fix the payload.
	ErrDecode = errors.New("malformed server response")

	// ErrTokenSource is returned when a bearer token cannot be obtained.
	ErrTokenSource = errors.New("failed to obtain access token")
)
