// Package constants provides shared constants for the lead-intake application.
package constants

// Debt-to-income ceilings for the supported loan programs.
const (
	// DTIConventional is the maximum debt-to-income ratio for conventional loans
	DTIConventional = 0.47

	// DTIFHA is the maximum debt-to-income ratio for FHA loans
	DTIFHA = 0.53
)

// Income qualification constants
const (
	// WeeksPerMonth converts weekly figures to monthly ones
	WeeksPerMonth = 4

	// MinQualifyingHoursPerWeek is the lowest weekly hours that count as stable full-time income
	MinQualifyingHoursPerWeek = 37.0

	// MaxQualifyingHoursPerWeek is the highest weekly hours that count as stable full-time income
	MaxQualifyingHoursPerWeek = 40.0

	// OvertimeMultiplier is the time-and-a-half pay factor
	OvertimeMultiplier = 1.5

	// MinOvertimeMonths is the overtime history required before it counts as income
	MinOvertimeMonths = 12

	// MileageAddbackRate is the per-mile business expense added back to 1099 net profit
	MileageAddbackRate = 0.24

	// SelfEmployedAveragingMonths is the two-year averaging window for 1099 income
	SelfEmployedAveragingMonths = 24
)

// Credit score tiers used for dashboard badges
const (
	// GoodCreditScore is the lowest score in the good tier
	GoodCreditScore = 620

	// FairCreditScore is the lowest score in the fair tier
	FairCreditScore = 580
)

// Financial constants
const (
	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// DefaultLocale is the language used to render amounts
	DefaultLocale = "en-US"

	// DefaultCurrency is the ISO 4217 code amounts are shown in
	DefaultCurrency = "USD"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "LEADINTAKE"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateLimitRequests is the number of public submissions allowed per window
	DefaultRateLimitRequests = 5

	// DefaultRateLimitWindow is the refill window for the public rate limiter
	DefaultRateLimitWindow = "1m"

	// DefaultSessionTTL is how long an admin session stays valid
	DefaultSessionTTL = "12h"

	// DefaultCacheTTL is how long a cached submission stays in Redis
	DefaultCacheTTL = "30m"
)

// Storage backends
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Session backends
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"
)
