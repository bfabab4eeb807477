package appstore

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-appstore/auth"
	"github.com/goliatone/go-appstore/core"
	"github.com/goliatone/go-appstore/ratelimit"
	"github.com/goliatone/go-appstore/resources"
	"github.com/goliatone/go-appstore/sync"
	"github.com/goliatone/go-appstore/transport"
)

// Re-exported aliases so most callers only import the root package.
type (
	Config                        = core.Config
	Credentials                   = core.Credentials
	App                           = core.App
	AppInfo                       = core.AppInfo
	AppInfoLocalizationAttributes = core.AppInfoLocalizationAttributes
	LocalizationRecord            = core.LocalizationRecord
	Version                       = core.Version
	CreateVersionInput            = core.CreateVersionInput
	Category                      = core.Category
	AppCategories                 = core.AppCategories
	CategorySelection             = core.CategorySelection
	SyncOutcome                   = core.SyncOutcome
)

// String returns a pointer to the given value, for filling optional
// localization fields.
var String = core.String

func DefaultConfig() Config {
	return core.DefaultConfig()
}

type Option func(*clientOptions)

type clientOptions struct {
	baseURL       string
	httpClient    core.HTTPDoer
	logger        core.Logger
	provider      core.LoggerProvider
	policy        *ratelimit.Policy
	now           func() time.Time
	tokenTTL      time.Duration
	refreshMargin time.Duration
	maxConcurrent int
}

// WithBaseURL points the client at a different API host, usually a test
// server.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		o.baseURL = strings.TrimSpace(baseURL)
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient core.HTTPDoer) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

func WithLogger(logger core.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(o *clientOptions) {
		o.provider = provider
	}
}

// WithRetryPolicy overrides the backoff and retry caps of the transport.
func WithRetryPolicy(policy *ratelimit.Policy) Option {
	return func(o *clientOptions) {
		o.policy = policy
	}
}

// WithClock injects the time source used for token lifetimes and retry
// delays.
func WithClock(now func() time.Time) Option {
	return func(o *clientOptions) {
		o.now = now
	}
}

// WithTokenLifetime overrides the signed token TTL and the refresh margin.
func WithTokenLifetime(ttl, margin time.Duration) Option {
	return func(o *clientOptions) {
		o.tokenTTL = ttl
		o.refreshMargin = margin
	}
}

// WithMaxConcurrentWrites caps the parallel per-locale writes during a
// localization sync.
func WithMaxConcurrentWrites(n int) Option {
	return func(o *clientOptions) {
		o.maxConcurrent = n
	}
}

// Client is the assembled API surface: token management, rate-limit aware
// transport, typed resource access, and the localization syncer.
type Client struct {
	tokens     *auth.TokenManager
	transport  *transport.Client
	apps       *resources.Apps
	appInfos   *resources.AppInfos
	versions   *resources.Versions
	categories *resources.Categories
	syncer     *sync.Syncer
	logger     core.Logger
}

// New builds a client from explicit credentials.
func New(creds core.Credentials, opts ...Option) (*Client, error) {
	cfg := clientOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	tokens, err := auth.NewTokenManager(auth.Config{
		KeyID:         creds.KeyID,
		IssuerID:      creds.IssuerID,
		PrivateKeyPEM: creds.PrivateKeyPEM,
		TokenTTL:      cfg.tokenTTL,
		RefreshMargin: cfg.refreshMargin,
		Now:           cfg.now,
	})
	if err != nil {
		return nil, err
	}

	_, logger := core.ResolveLogger("appstore", cfg.provider, cfg.logger)

	httpClient := transport.NewClient(cfg.baseURL, tokens)
	if cfg.httpClient != nil {
		httpClient.HTTPClient = cfg.httpClient
	}
	if cfg.policy != nil {
		httpClient.Policy = cfg.policy
	}
	if cfg.now != nil {
		httpClient.Now = cfg.now
	}
	_, httpClient.Logger = core.ResolveLogger("appstore.transport", cfg.provider, cfg.logger)

	apps := resources.NewApps(httpClient)
	appInfos := resources.NewAppInfos(httpClient)
	versions := resources.NewVersions(httpClient)
	categories := resources.NewCategories(httpClient)

	syncer := sync.NewSyncer(apps, appInfos)
	_, syncer.Logger = core.ResolveLogger("appstore.sync", cfg.provider, cfg.logger)
	if cfg.maxConcurrent > 0 {
		syncer.MaxConcurrent = cfg.maxConcurrent
	}

	return &Client{
		tokens:     tokens,
		transport:  httpClient,
		apps:       apps,
		appInfos:   appInfos,
		versions:   versions,
		categories: categories,
		syncer:     syncer,
		logger:     logger,
	}, nil
}

// NewFromConfig builds a client from a resolved configuration, loading the
// signing key from PrivateKeyPath when the PEM is not given inline.
func NewFromConfig(cfg core.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, core.NewBadInputError(err.Error())
	}

	var pem []byte
	if strings.TrimSpace(cfg.PrivateKeyPEM) == "" && strings.TrimSpace(cfg.PrivateKeyPath) != "" {
		data, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, core.WrapAuthError(err, "appstore: reading private key file failed")
		}
		pem = data
	}

	merged := make([]Option, 0, len(opts)+3)
	if strings.TrimSpace(cfg.BaseURL) != "" {
		merged = append(merged, WithBaseURL(cfg.BaseURL))
	}
	if cfg.Token.TTL > 0 || cfg.Token.RefreshMargin > 0 {
		merged = append(merged, WithTokenLifetime(cfg.Token.TTL, cfg.Token.RefreshMargin))
	}
	merged = append(merged, WithRetryPolicy(&ratelimit.Policy{
		InitialBackoff:       cfg.Retry.InitialBackoff,
		MaxBackoff:           cfg.Retry.MaxBackoff,
		MaxAttemptsRateLimit: cfg.Retry.MaxAttemptsRateLimit,
		MaxAttemptsTransient: cfg.Retry.MaxAttemptsTransient,
	}))
	merged = append(merged, opts...)

	return New(cfg.Credentials(pem), merged...)
}

// NewFromEnv resolves configuration from APPSTORE_* environment variables
// and builds a client from it.
func NewFromEnv(ctx context.Context, opts ...Option) (*Client, error) {
	provider := core.NewCfgxConfigProvider(core.EnvRawConfigLoader{})
	cfg, err := core.ResolveConfig(ctx, provider, core.Config{})
	if err != nil {
		return nil, err
	}
	return NewFromConfig(cfg, opts...)
}

// Apps exposes the typed app resource.
func (c *Client) Apps() *resources.Apps {
	if c == nil {
		return nil
	}
	return c.apps
}

// AppInfos exposes the typed app-info resource.
func (c *Client) AppInfos() *resources.AppInfos {
	if c == nil {
		return nil
	}
	return c.appInfos
}

// Versions exposes the typed version resource.
func (c *Client) Versions() *resources.Versions {
	if c == nil {
		return nil
	}
	return c.versions
}

// Categories exposes the typed app category resource.
func (c *Client) Categories() *resources.Categories {
	if c == nil {
		return nil
	}
	return c.categories
}

// Transport exposes the underlying HTTP client for raw requests.
func (c *Client) Transport() *transport.Client {
	if c == nil {
		return nil
	}
	return c.transport
}

// SyncLocalizations reconciles the desired locale set against the editable
// app-info container of the app.
func (c *Client) SyncLocalizations(
	ctx context.Context,
	appID string,
	desired map[string]core.AppInfoLocalizationAttributes,
) (map[string]core.SyncOutcome, error) {
	if c == nil || c.syncer == nil {
		return nil, core.NewInternalError("appstore: client is not initialized")
	}
	return c.syncer.SyncLocalizations(ctx, appID, desired)
}

// CreateVersion creates a new editable app store version for an app.
func (c *Client) CreateVersion(ctx context.Context, input core.CreateVersionInput) (core.Version, error) {
	if c == nil || c.versions == nil {
		return core.Version{}, core.NewInternalError("appstore: client is not initialized")
	}
	return c.versions.Create(ctx, input)
}

// UpdateApp patches top-level app attributes.
func (c *Client) UpdateApp(ctx context.Context, appID string, attributes map[string]any) (core.App, error) {
	if c == nil || c.apps == nil {
		return core.App{}, core.NewInternalError("appstore: client is not initialized")
	}
	return c.apps.Update(ctx, appID, attributes)
}

// GetApp fetches one app by identifier.
func (c *Client) GetApp(ctx context.Context, appID string) (core.App, error) {
	if c == nil || c.apps == nil {
		return core.App{}, core.NewInternalError("appstore: client is not initialized")
	}
	return c.apps.Get(ctx, appID)
}

// AppByBundleID resolves an app through its bundle identifier.
func (c *Client) AppByBundleID(ctx context.Context, bundleID string) (core.App, error) {
	if c == nil || c.apps == nil {
		return core.App{}, core.NewInternalError("appstore: client is not initialized")
	}
	return c.apps.ByBundleID(ctx, bundleID)
}

// ListLocalizations lists the stored localizations of an app-info container.
func (c *Client) ListLocalizations(ctx context.Context, appInfoID string) ([]core.LocalizationRecord, error) {
	if c == nil || c.appInfos == nil {
		return nil, core.NewInternalError("appstore: client is not initialized")
	}
	return c.appInfos.Localizations(ctx, appInfoID)
}

// CurrentVersion resolves the version currently closest to the store front.
func (c *Client) CurrentVersion(ctx context.Context, appID string) (core.Version, error) {
	if c == nil || c.versions == nil {
		return core.Version{}, core.NewInternalError("appstore: client is not initialized")
	}
	return c.versions.Current(ctx, appID)
}
