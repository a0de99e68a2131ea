package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from the YAML file at path, overlays the
// process environment and resolves secret references.
//
// An empty path falls back to HEALTHPROBE_CONFIG; with neither set only the
// environment is used. A named file that does not exist is an error.
func Load(ctx context.Context, path string) (*Settings, error) {
	values := make(map[string]any)

	if path == "" {
		path = os.Getenv(KeyConfigFile)
	}
	if path != "" {
		fileValues, err := readFile(path)
		if err != nil {
			return nil, err
		}
		for k, v := range fileValues {
			values[k] = v
		}
	}

	for _, key := range Keys {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	secretsDir := DefaultSecretsDir
	if dir, ok := values[KeySecretsDir].(string); ok && dir != "" {
		secretsDir = dir
	}
	resolver := NewResolver(true, EnvProvider{}, FileProvider{Dir: secretsDir})

	for key, v := range values {
		resolved, err := resolve(ctx, resolver, v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrSecretUnresolved, key, err)
		}
		values[key] = resolved
	}

	settings := New(values)
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrConfigInvalid, path, err)
	}

	values := make(map[string]any, len(raw))
	for k, v := range raw {
		if _, nested := v.(map[string]any); nested {
			return nil, fmt.Errorf("%w: %s must be a scalar or a list", ErrInvalidValue, k)
		}
		values[strings.ToUpper(k)] = v
	}
	return values, nil
}

func resolve(ctx context.Context, resolver *Resolver, v any) (any, error) {
	switch t := v.(type) {
	case string:
		return resolver.ResolveValue(ctx, t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			resolved, err := resolve(ctx, resolver, item)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}
