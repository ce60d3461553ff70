package adapter

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ortano/docsync/internal/logger"
)

// expirySkew is subtracted from a token's exp claim so a token is refreshed
// shortly before the server would start rejecting it.
const expirySkew = 30 * time.Second

// CachingTokenProvider implements [TokenProvider] over a [TokenSource]. It
// caches the fetched token and reuses it until the exp claim (minus a small
// skew) passes. Tokens without a readable exp claim are cached until a 401
// forces a refresh.
type CachingTokenProvider struct {
	source TokenSource
	logger *logger.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

func NewCachingTokenProvider(source TokenSource, log *logger.Logger) *CachingTokenProvider {
	return &CachingTokenProvider{
		source: source,
		logger: log,
		now:    time.Now,
	}
}

// AccessToken implements [TokenProvider].
func (p *CachingTokenProvider) AccessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && (p.expiresAt.IsZero() || p.now().Before(p.expiresAt)) {
		return p.token, nil
	}
	return p.fetchLocked(ctx)
}

// Refresh implements [TokenProvider].
func (p *CachingTokenProvider) Refresh(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.token = ""
	p.expiresAt = time.Time{}
	return p.fetchLocked(ctx)
}

func (p *CachingTokenProvider) fetchLocked(ctx context.Context) (string, error) {
	token, err := p.source.FetchToken(ctx)
	if err != nil {
		return "", err
	}

	p.token = strings.TrimSpace(token)
	p.expiresAt = tokenExpiry(p.token)
	if !p.expiresAt.IsZero() {
		p.expiresAt = p.expiresAt.Add(-expirySkew)
	}

	p.logger.Debug().
		Str("func", "CachingTokenProvider.fetchLocked").
		Time("expires_at", p.expiresAt).
		Msg("access token refreshed")
	return p.token, nil
}

// tokenExpiry extracts the exp claim without verifying the signature; the
// engine only consumes tokens, the server verifies them. Returns the zero
// time when the claim is absent or the token is not a JWT.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// StaticTokenSource adapts a fixed credential string to [TokenSource], for
// deployments using a long-lived API token.
type StaticTokenSource string

// FetchToken implements [TokenSource].
func (s StaticTokenSource) FetchToken(context.Context) (string, error) {
	return string(s), nil
}
