package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/materialkit/matdump/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Export.Style != "tagged" || cfg.Export.OutDir != "export" || cfg.Export.MaxDepth != 20 {
		t.Errorf("export defaults = %+v", cfg.Export)
	}
	if cfg.Scene.Source != "json" {
		t.Errorf("scene source = %q", cfg.Scene.Source)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("cache backend = %q", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":8402" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
}

func TestParseOverridesDefaults(t *testing.T) {
	data := []byte(`
[export]
style = "flow"
max_depth = 5

[cache]
backend = "redis"
redis_addr = "localhost:6380"
`)
	cfg, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Export.Style != "flow" || cfg.Export.MaxDepth != 5 {
		t.Errorf("export = %+v", cfg.Export)
	}
	// Untouched fields keep their defaults.
	if cfg.Export.OutDir != "export" {
		t.Errorf("out_dir = %q, want default", cfg.Export.OutDir)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6380" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad style", "[export]\nstyle = \"xml\"\n"},
		{"negative depth", "[export]\nmax_depth = -1\n"},
		{"bad source", "[scene]\nsource = \"ftp\"\n"},
		{"bad backend", "[cache]\nbackend = \"memcached\"\n"},
		{"traversal out dir", "[export]\nout_dir = \"../evil\"\n"},
		{"not toml", "export = {{{\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), nil)
			if err == nil {
				t.Fatal("Parse() should fail")
			}
			code := errors.GetCode(err)
			if code != errors.ErrCodeInvalidConfig && code != errors.ErrCodeInvalidStyle && code != errors.ErrCodeInvalidPath {
				t.Errorf("error code = %v", code)
			}
		})
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFilename), false)
	if err != nil {
		t.Fatalf("Load() error = %v, missing default file should not fail", err)
	}
	if cfg.Export.Style != "tagged" {
		t.Errorf("style = %q, want default", cfg.Export.Style)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml"), true); err == nil {
		t.Error("Load() should fail for a missing explicit path")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matdump.toml")
	if err := os.WriteFile(path, []byte("[export]\nstyle = \"prefixed\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, true)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Export.Style != "prefixed" {
		t.Errorf("style = %q", cfg.Export.Style)
	}
}
