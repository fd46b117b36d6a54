// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/constants"
	"github.com/iwvelando/lead-intake/pkg/format"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for lead-intake.
type Configuration struct {
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Auth    AuthConfig    `yaml:"auth,omitempty"`
	Policy  PolicyConfig  `yaml:"policy,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format   string `yaml:"format,omitempty"`   // pretty, csv
	Locale   string `yaml:"locale,omitempty"`   // BCP 47 tag, e.g. en-US
	Currency string `yaml:"currency,omitempty"` // ISO 4217 code, e.g. USD
}

// Formatter returns the display formatter for the configured locale and currency.
func (o OutputConfig) Formatter() (*format.Formatter, error) {
	return format.ParseFormatter(o.Locale, o.Currency)
}

// StoreConfig selects and configures submission persistence.
type StoreConfig struct {
	Backend  string         `yaml:"backend,omitempty"` // memory, postgres
	Postgres PostgresConfig `yaml:"postgres,omitempty"`
	Redis    RedisConfig    `yaml:"redis,omitempty"`
	CacheTTL time.Duration  `yaml:"cacheTTL,omitempty"`
}

// PostgresConfig holds connection settings for the submissions database.
type PostgresConfig struct {
	Host           string `yaml:"host,omitempty"`
	Port           int    `yaml:"port,omitempty"`
	Database       string `yaml:"database,omitempty"`
	User           string `yaml:"user,omitempty"`
	Password       string `yaml:"password,omitempty"`
	SSLMode        string `yaml:"sslMode,omitempty"`
	MaxConnections int    `yaml:"maxConnections,omitempty"`
	MaxIdle        int    `yaml:"maxIdle,omitempty"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// RedisConfig configures the submission cache and the session store. An
// empty Address disables Redis.
type RedisConfig struct {
	Address  string `yaml:"address,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
}

// Enabled reports whether a Redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

// AuthConfig holds the dashboard administrators and session settings.
type AuthConfig struct {
	Admins  []AdminConfig `yaml:"admins,omitempty"`
	Session SessionConfig `yaml:"session,omitempty"`
}

// AdminConfig is one dashboard user. PasswordHash is a bcrypt hash.
type AdminConfig struct {
	Email        string `yaml:"email"`
	Name         string `yaml:"name,omitempty"`
	PasswordHash string `yaml:"passwordHash"`
}

// SessionConfig selects where admin sessions live and for how long.
type SessionConfig struct {
	Backend string        `yaml:"backend,omitempty"` // memory, redis
	TTL     time.Duration `yaml:"ttl,omitempty"`
}

// PolicyConfig overrides underwriting figures. Zero values keep the
// defaults.
type PolicyConfig struct {
	DTIConventional    float64 `yaml:"dtiConventional,omitempty"`
	DTIFHA             float64 `yaml:"dtiFHA,omitempty"`
	MinQualifyingHours float64 `yaml:"minQualifyingHours,omitempty"`
	MaxQualifyingHours float64 `yaml:"maxQualifyingHours,omitempty"`
	MinOvertimeMonths  int     `yaml:"minOvertimeMonths,omitempty"`
	MileageAddbackRate float64 `yaml:"mileageAddbackRate,omitempty"`
}

// Apply returns base with every non-zero override applied.
func (p PolicyConfig) Apply(base affordability.Policy) affordability.Policy {
	if p.DTIConventional != 0 {
		base.DTIConventional = p.DTIConventional
	}
	if p.DTIFHA != 0 {
		base.DTIFHA = p.DTIFHA
	}
	if p.MinQualifyingHours != 0 {
		base.MinQualifyingHours = p.MinQualifyingHours
	}
	if p.MaxQualifyingHours != 0 {
		base.MaxQualifyingHours = p.MaxQualifyingHours
	}
	if p.MinOvertimeMonths != 0 {
		base.MinOvertimeMonths = p.MinOvertimeMonths
	}
	if p.MileageAddbackRate != 0 {
		base.MileageAddbackRate = p.MileageAddbackRate
	}
	return base
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. A .env file in the working directory is loaded first
// so that LEADINTAKE_* variables can override file values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	loadEnvFile(".env")

	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from a reader, with
// the same defaults and environment overrides as LoadConfiguration.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func loadEnvFile(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	applyDefaults(v)
	return v
}

// applyDefaults registers every overridable key so that environment
// variables are honored by Unmarshal even when the file omits the key.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.locale", constants.DefaultLocale)
	v.SetDefault("output.currency", constants.DefaultCurrency)

	v.SetDefault("store.backend", constants.StoreMemory)
	v.SetDefault("store.cacheTTL", constants.DefaultCacheTTL)
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.database", "leadintake")
	v.SetDefault("store.postgres.user", "")
	v.SetDefault("store.postgres.password", "")
	v.SetDefault("store.postgres.sslMode", "disable")
	v.SetDefault("store.postgres.maxConnections", 25)
	v.SetDefault("store.postgres.maxIdle", 5)
	v.SetDefault("store.redis.address", "")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)

	v.SetDefault("auth.session.backend", constants.SessionMemory)
	v.SetDefault("auth.session.ttl", constants.DefaultSessionTTL)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	if err := configuration.validate(); err != nil {
		return nil, err
	}

	return &configuration, nil
}

func (c *Configuration) validate() error {
	switch c.Store.Backend {
	case constants.StoreMemory, constants.StorePostgres:
	default:
		return fmt.Errorf("unsupported store backend %q", c.Store.Backend)
	}

	switch c.Auth.Session.Backend {
	case constants.SessionMemory:
	case constants.SessionRedis:
		if !c.Store.Redis.Enabled() {
			return fmt.Errorf("session backend %q requires store.redis.address", c.Auth.Session.Backend)
		}
	default:
		return fmt.Errorf("unsupported session backend %q", c.Auth.Session.Backend)
	}

	if _, err := c.Output.Formatter(); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	if c.Auth.Session.TTL <= 0 {
		return fmt.Errorf("auth.session.ttl must be positive, got %s", c.Auth.Session.TTL)
	}

	for i, admin := range c.Auth.Admins {
		if admin.Email == "" || admin.PasswordHash == "" {
			return fmt.Errorf("auth.admins[%d] requires email and passwordHash", i)
		}
	}

	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.Auth.Admins) == 0 {
		warnings = append(warnings, "No admin users configured - the dashboard will reject every login")
	}

	if c.Store.Backend == constants.StoreMemory {
		warnings = append(warnings, "Using the in-memory store - submissions are lost on restart")
	}

	if c.Store.Backend == constants.StorePostgres && c.Store.Postgres.User == "" {
		warnings = append(warnings, "store.postgres.user is empty")
	}

	policy := c.Policy.Apply(affordability.DefaultPolicy())
	if policy.DTIFHA < policy.DTIConventional {
		warnings = append(warnings, fmt.Sprintf("FHA DTI ceiling (%.2f) is below the conventional ceiling (%.2f)",
			policy.DTIFHA, policy.DTIConventional))
	}
	if policy.MinQualifyingHours > policy.MaxQualifyingHours {
		warnings = append(warnings, fmt.Sprintf("Qualifying hour band is empty (%.1f > %.1f) - hourly base income will always be zero",
			policy.MinQualifyingHours, policy.MaxQualifyingHours))
	}

	return warnings
}
