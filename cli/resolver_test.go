package cli

import (
	"strings"
	"testing"

	"github.com/alecthomas/kong"
)

func resolve(t *testing.T, yaml, flag string) any {
	t.Helper()

	r, err := resolveYAML(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("resolver error: %v", err)
	}

	v, err := r.Resolve(nil, nil, &kong.Flag{
		Value: &kong.Value{Name: flag},
	})
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}

	return v
}

func TestResolveYAML_FlatKeys(t *testing.T) {
	cfg := "format: json\n"

	if got := resolve(t, cfg, "format"); got != "json" {
		t.Errorf("expected json, got %v", got)
	}
}

func TestResolveYAML_NestedGroups(t *testing.T) {
	cfg := "log:\n  level: debug\n  pretty: false\n"

	if got := resolve(t, cfg, "log-level"); got != "debug" {
		t.Errorf("expected debug, got %v", got)
	}

	if got := resolve(t, cfg, "log-pretty"); got != false {
		t.Errorf("expected false, got %v", got)
	}
}

func TestResolveYAML_UnderscoreAlias(t *testing.T) {
	cfg := "log_level: warn\n"

	if got := resolve(t, cfg, "log-level"); got != "warn" {
		t.Errorf("expected warn, got %v", got)
	}
}

func TestResolveYAML_MissingKey(t *testing.T) {
	if got := resolve(t, "a: 1\n", "b"); got != nil {
		t.Errorf("expected nil for missing key, got %v", got)
	}
}

func TestResolveYAML_MalformedFile(t *testing.T) {
	// A malformed config resolves nothing rather than aborting parsing.
	if got := resolve(t, ":\n\t-bad", "a"); got != nil {
		t.Errorf("expected nil from malformed config, got %v", got)
	}
}
