package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/lead-intake/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Fatalf("expected default body size, got %d", cfg.BodySizeBytes())
	}
	if cfg.RateLimit.Requests != constants.DefaultRateLimitRequests || cfg.RateLimitWindow() != time.Minute {
		t.Fatalf("unexpected rate limit defaults %+v", cfg.RateLimit)
	}
	read, write, idle := cfg.Timeouts()
	if read != 10*time.Second || write != 15*time.Second || idle != time.Minute {
		t.Fatalf("unexpected timeouts %v %v %v", read, write, idle)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server-config.yaml")

	contents := []byte(`address: 127.0.0.1:9000
maxBodySize: 128K
rateLimit:
  requests: 20
  window: 30s
allowedOrigins:
  - https://apply.example.com
readTimeout: 5s
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Fatalf("expected address override, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 128*1024 {
		t.Fatalf("expected body size override, got %d", cfg.BodySizeBytes())
	}
	if cfg.RateLimit.Requests != 20 || cfg.RateLimitWindow() != 30*time.Second {
		t.Fatalf("expected rate limit override, got %+v", cfg.RateLimit)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "https://apply.example.com" {
		t.Fatalf("expected allowed origins override, got %v", cfg.AllowedOrigins)
	}
	if read, _, _ := cfg.Timeouts(); read != 5*time.Second {
		t.Fatalf("expected read timeout 5s, got %v", read)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"bad size":     "maxBodySize: invalid",
		"bad window":   "rateLimit:\n  window: soon\n",
		"zero timeout": "writeTimeout: 0s\n",
		"bad yaml":     "address: [unclosed",
	}

	for name, contents := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
				t.Fatalf("failed to write temp config: %v", err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Fatal("expected error but got nil")
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxBodySizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	if _, err := ParseSize("1GB"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
	if _, err := ParseSize("abc"); err == nil {
		t.Fatal("expected error for invalid number")
	}
}
