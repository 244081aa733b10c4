package cli

import (
	"io"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// resolveYAML is a [kong.ConfigurationLoader] that reads flag defaults
// from a YAML mapping. Nested mappings resolve grouped flags: the
// mapping {log: {level: debug}} supplies --log-level.
//
// Command-line flags override config file values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var root map[string]any

	if err := yaml.Unmarshal(data, &root); err != nil {
		// Malformed config files resolve nothing rather than aborting
		// flag parsing.
		return yamlConfig(nil), nil
	}

	flat := make(map[string]any)
	flatten("", root, flat)

	return yamlConfig(flat), nil
}

// flatten joins nested mapping keys with hyphens to match flag names.
func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		name := k
		if prefix != "" {
			name = prefix + "-" + k
		}

		if sub, ok := v.(map[string]any); ok {
			flatten(name, sub, out)

			continue
		}

		out[name] = v
	}
}

// yamlConfig implements [kong.Resolver] for flattened YAML configs.
type yamlConfig map[string]any

// Validate implements [kong.Resolver].
func (yamlConfig) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (r yamlConfig) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if v, ok := r[flag.Name]; ok {
		return v, nil
	}

	// Config files may spell hyphenated flags with underscores.
	if v, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return v, nil
	}

	return nil, nil
}
