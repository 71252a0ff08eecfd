package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	errs "github.com/matzehuels/svgcrop/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[crop]
size = 200

[renderer]
kind = "raster"

[cache]
backend = "redis"
redis_url = "redis://localhost:6379/0"
ttl = "1h"

[server]
read_timeout = "5s"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.Crop.Size = 200
	want.Renderer.Kind = "raster"
	want.Cache.Backend = BackendRedis
	want.Cache.RedisURL = "redis://localhost:6379/0"
	want.Cache.TTL = time.Hour
	want.Server.ReadTimeout = 5 * time.Second

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	if !cfg.Renderer.Headless {
		t.Error("headless should stay on when the key is absent")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[crop\nsize = 1"},
		{"unknown key", "[crop]\ncolour = 1"},
		{"tile too big", "[crop]\nsize = 2000"},
		{"bad renderer", "[renderer]\nkind = \"gpu\""},
		{"bad backend", "[cache]\nbackend = \"memcached\""},
		{"redis without url", "[cache]\nbackend = \"redis\""},
		{"mongo without uri", "[cache]\nbackend = \"mongo\""},
		{"bad control url", "[renderer]\ncontrol_url = \"localhost:9222\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if got := errs.GetCode(err); got != errs.ErrCodeConfiguration && got != errs.ErrCodeInvalidInput {
				t.Errorf("code = %q", got)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	got, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if want := "/tmp/xdg/svgcrop/config.toml"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Renderer.ControlURL = "ws://127.0.0.1:9222/devtools/browser/x"

	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	got, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("Load(encoded) error = %v\n%s", err, buf.String())
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
