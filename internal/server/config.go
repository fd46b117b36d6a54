package server

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/lead-intake/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Config defines runtime parameters for the HTTP server.
type Config struct {
	Address        string          `yaml:"address"`
	MaxBodySize    string          `yaml:"maxBodySize"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	ReadTimeout    string          `yaml:"readTimeout"`
	WriteTimeout   string          `yaml:"writeTimeout"`
	IdleTimeout    string          `yaml:"idleTimeout"`

	bodySizeBytes int64
	window        time.Duration
	timeouts      [3]time.Duration
}

// RateLimitConfig bounds public submissions per client IP. Requests tokens
// are restored every Window.
type RateLimitConfig struct {
	Requests int    `yaml:"requests"`
	Window   string `yaml:"window"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := cfg.normalize(); err != nil {
		panic(fmt.Sprintf("invalid default server config: %v", err))
	}
	return cfg
}

// LoadConfig loads the server configuration from YAML. If the file does not exist,
// defaults are returned without error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read server config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BodySizeBytes returns the request body limit in bytes.
func (c *Config) BodySizeBytes() int64 {
	return c.bodySizeBytes
}

// RateLimitWindow returns the parsed refill window.
func (c *Config) RateLimitWindow() time.Duration {
	return c.window
}

// Timeouts returns the read, write and idle timeouts.
func (c *Config) Timeouts() (read, write, idle time.Duration) {
	return c.timeouts[0], c.timeouts[1], c.timeouts[2]
}

func (c *Config) normalize() error {
	if c.Address == "" {
		c.Address = constants.DefaultServerAddress
	}

	bytes, err := ParseSize(c.MaxBodySize)
	if err != nil {
		return err
	}
	if bytes <= 0 {
		bytes = constants.DefaultMaxBodySizeBytes
	}
	c.bodySizeBytes = bytes

	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = constants.DefaultRateLimitRequests
	}
	if strings.TrimSpace(c.RateLimit.Window) == "" {
		c.RateLimit.Window = constants.DefaultRateLimitWindow
	}
	if c.window, err = parsePositiveDuration("rateLimit.window", c.RateLimit.Window); err != nil {
		return err
	}

	defaults := [3]string{"10s", "15s", "60s"}
	fields := [3]*string{&c.ReadTimeout, &c.WriteTimeout, &c.IdleTimeout}
	names := [3]string{"readTimeout", "writeTimeout", "idleTimeout"}
	for i, field := range fields {
		if strings.TrimSpace(*field) == "" {
			*field = defaults[i]
		}
		if c.timeouts[i], err = parsePositiveDuration(names[i], *field); err != nil {
			return err
		}
	}
	return nil
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", name, value)
	}
	return d, nil
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
