package core

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

// DefaultEnvPrefix matches the environment variables the shipped tooling
// documents: APPSTORE_KEY_ID, APPSTORE_ISSUER_ID, APPSTORE_PRIVATE_KEY_PATH,
// APPSTORE_BASE_URL.
const DefaultEnvPrefix = "APPSTORE"

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// EnvRawConfigLoader lifts credential settings from environment variables.
type EnvRawConfigLoader struct {
	Prefix string
	Getenv func(string) string
}

func (l EnvRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	prefix := strings.TrimSpace(l.Prefix)
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	getenv := l.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	raw := map[string]any{}
	for env, key := range map[string]string{
		prefix + "_BASE_URL":         "base_url",
		prefix + "_KEY_ID":           "key_id",
		prefix + "_ISSUER_ID":        "issuer_id",
		prefix + "_PRIVATE_KEY_PATH": "private_key_path",
		prefix + "_PRIVATE_KEY_PEM":  "private_key_pem",
	} {
		if value := strings.TrimSpace(getenv(env)); value != "" {
			raw[key] = value
		}
	}
	return raw, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// GoOptionsResolver merges defaults < loaded < runtime through a layered
// options stack.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

// ResolveConfig runs the provider + resolver pipeline with the package
// defaults.
func ResolveConfig(ctx context.Context, provider ConfigProvider, runtime Config) (Config, error) {
	defaults := DefaultConfig()
	loaded := defaults
	if provider != nil {
		var err error
		loaded, err = provider.Load(ctx, defaults)
		if err != nil {
			return Config{}, err
		}
	}
	return GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.BaseURL) != "" {
		layer["base_url"] = cfg.BaseURL
	}
	if includeZero || strings.TrimSpace(cfg.KeyID) != "" {
		layer["key_id"] = cfg.KeyID
	}
	if includeZero || strings.TrimSpace(cfg.IssuerID) != "" {
		layer["issuer_id"] = cfg.IssuerID
	}
	if includeZero || strings.TrimSpace(cfg.PrivateKeyPath) != "" {
		layer["private_key_path"] = cfg.PrivateKeyPath
	}
	if includeZero || strings.TrimSpace(cfg.PrivateKeyPEM) != "" {
		layer["private_key_pem"] = cfg.PrivateKeyPEM
	}

	token := map[string]any{}
	if includeZero || cfg.Token.TTL > 0 {
		token["ttl"] = cfg.Token.TTL
	}
	if includeZero || cfg.Token.RefreshMargin > 0 {
		token["refresh_margin"] = cfg.Token.RefreshMargin
	}
	if len(token) > 0 {
		layer["token"] = token
	}

	retry := map[string]any{}
	if includeZero || cfg.Retry.MaxAttemptsRateLimit > 0 {
		retry["max_attempts_rate_limit"] = cfg.Retry.MaxAttemptsRateLimit
	}
	if includeZero || cfg.Retry.MaxAttemptsTransient > 0 {
		retry["max_attempts_transient"] = cfg.Retry.MaxAttemptsTransient
	}
	if includeZero || cfg.Retry.InitialBackoff > 0 {
		retry["initial_backoff"] = cfg.Retry.InitialBackoff
	}
	if includeZero || cfg.Retry.MaxBackoff > 0 {
		retry["max_backoff"] = cfg.Retry.MaxBackoff
	}
	if len(retry) > 0 {
		layer["retry"] = retry
	}

	return layer
}
