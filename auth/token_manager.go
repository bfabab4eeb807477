package auth

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-appstore/core"
)

const (
	// DefaultAudience is the audience claim the API requires on every token.
	DefaultAudience = "appstoreconnect-v1"

	// DefaultTokenTTL is the longest lifetime the API accepts.
	DefaultTokenTTL = 20 * time.Minute

	// DefaultRefreshMargin is the remaining validity below which a token is
	// proactively renewed instead of handed out.
	DefaultRefreshMargin = time.Minute
)

type Config struct {
	KeyID         string
	IssuerID      string
	PrivateKeyPEM []byte
	Audience      string
	TokenTTL      time.Duration
	RefreshMargin time.Duration
	Now           func() time.Time
}

// TokenManager holds at most one live signed token and renews it when the
// remaining validity drops below the refresh margin. Renewal is coalesced:
// concurrent callers hitting an expired cache trigger one signing operation
// and share its result.
type TokenManager struct {
	config Config
	key    *ecdsa.PrivateKey

	mu    sync.RWMutex
	token core.Token
	group singleflight.Group
}

func NewTokenManager(cfg Config) (*TokenManager, error) {
	cfg.KeyID = strings.TrimSpace(cfg.KeyID)
	cfg.IssuerID = strings.TrimSpace(cfg.IssuerID)
	cfg.Audience = strings.TrimSpace(cfg.Audience)
	if cfg.Audience == "" {
		cfg.Audience = DefaultAudience
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.RefreshMargin <= 0 {
		cfg.RefreshMargin = DefaultRefreshMargin
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	if cfg.KeyID == "" {
		return nil, core.NewAuthError("auth: key id is required")
	}
	if cfg.IssuerID == "" {
		return nil, core.NewAuthError("auth: issuer id is required")
	}
	if len(cfg.PrivateKeyPEM) == 0 {
		return nil, core.NewAuthError("auth: private key is required")
	}

	key, err := jwt.ParseECPrivateKeyFromPEM(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, core.WrapAuthError(err, "auth: parse private key")
	}

	return &TokenManager{config: cfg, key: key}, nil
}

// Token returns the cached token when it still has at least the refresh
// margin of validity, signing a replacement otherwise.
func (m *TokenManager) Token(ctx context.Context) (core.Token, error) {
	if m == nil || m.key == nil {
		return core.Token{}, core.NewAuthError("auth: token manager is not initialized")
	}
	if ctx != nil && ctx.Err() != nil {
		return core.Token{}, core.NewCancelledError(ctx.Err())
	}

	m.mu.RLock()
	cached := m.token
	m.mu.RUnlock()
	if cached.Fresh(m.now(), m.config.RefreshMargin) {
		return cached, nil
	}

	value, err, _ := m.group.Do("renew", func() (any, error) {
		m.mu.RLock()
		current := m.token
		m.mu.RUnlock()
		if current.Fresh(m.now(), m.config.RefreshMargin) {
			return current, nil
		}

		renewed, err := m.sign()
		if err != nil {
			return core.Token{}, err
		}
		m.mu.Lock()
		m.token = renewed
		m.mu.Unlock()
		return renewed, nil
	})
	if err != nil {
		return core.Token{}, err
	}
	token, ok := value.(core.Token)
	if !ok {
		return core.Token{}, core.NewAuthError("auth: unexpected renewal result")
	}
	return token, nil
}

// Bearer implements core.TokenSource.
func (m *TokenManager) Bearer(ctx context.Context) (string, error) {
	token, err := m.Token(ctx)
	if err != nil {
		return "", err
	}
	return token.Value, nil
}

func (m *TokenManager) sign() (core.Token, error) {
	now := m.now()
	expiresAt := now.Add(m.config.TokenTTL)

	claims := jwt.MapClaims{
		"iss": m.config.IssuerID,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
		"aud": m.config.Audience,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = m.config.KeyID

	signed, err := token.SignedString(m.key)
	if err != nil {
		return core.Token{}, core.WrapAuthError(err, "auth: sign token")
	}
	return core.Token{Value: signed, ExpiresAt: expiresAt}, nil
}

func (m *TokenManager) now() time.Time {
	if m != nil && m.config.Now != nil {
		return m.config.Now().UTC()
	}
	return time.Now().UTC()
}

var _ core.TokenSource = (*TokenManager)(nil)
