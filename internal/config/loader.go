package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix = "FPLCOACH_"
	EnvConfig = EnvPrefix + "CONFIG"
)

// mapKeys are the map-valued config keys that env vars may set in flat form.
var mapKeys = map[string]bool{ //nolint:gochecknoglobals // read-only lookup
	"opponent_strengths": true,
	"metrics_labels":     true,
}

// parseFlatMap splits "1:15,2:10" into {"1": "15", "2": "10"}. Values stay
// strings and are converted when unmarshalled into the target field.
func parseFlatMap(value string) (map[string]any, bool) {
	out := make(map[string]any)
	for _, pair := range strings.Split(value, ",") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, false
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, true
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if FPLCOACH_CONFIG is set
//  3. env (prefix FPLCOACH_)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// FPLCOACH_REDIS_URL -> redis_url. Underscores are kept to match koanf tags.
	// Map-valued keys take a flat "key:value,key:value" form.
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = strings.TrimPrefix(strings.ToLower(key), strings.ToLower(EnvPrefix))
		if mapKeys[key] {
			if m, ok := parseFlatMap(value); ok {
				return key, m
			}
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
