package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"revenue-service/internal/reporting"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageDynamoDB = "dynamodb"
	StoragePostgres = "postgres"
)

// Config holds all service configuration.
type Config struct {
	Port       string
	PathPrefix string
	LogLevel   slog.Level

	Storage  StorageConfig
	Roster   RosterConfig
	Ledger   LedgerConfig
	Reports  ReportsConfig
	Pricing  reporting.PricingConfig
	Demo     DemoConfig
	Currency string
}

// StorageConfig selects and locates the snapshot source.
type StorageConfig struct {
	Type         string
	AWSRegion    string
	RidesTable   string
	DriversTable string
	RatingsTable string
	DatabaseURL  string
}

// RosterConfig points at an optional external driver directory.
type RosterConfig struct {
	URL string
}

// LedgerConfig controls periodic ledger publishing.
type LedgerConfig struct {
	StreamName      string
	PublishInterval time.Duration
}

// ReportsConfig holds calendar and ranking settings.
type ReportsConfig struct {
	Location       *time.Location
	WeekStart      time.Weekday
	TopRoutesLimit int
}

// DemoConfig controls synthetic data generation.
type DemoConfig struct {
	Enabled    bool
	Interval   time.Duration
	SeedRides  int
	SeedDriver int
}

var defaults = map[string]any{
	"PORT":                     "8082",
	"PATH_PREFIX":              "",
	"LOG_LEVEL":                "info",
	"STORAGE_TYPE":             StorageMemory,
	"AWS_REGION":               "ap-southeast-1",
	"DYNAMODB_RIDES_TABLE":     "rides",
	"DYNAMODB_DRIVERS_TABLE":   "drivers",
	"DYNAMODB_RATINGS_TABLE":   "ratings",
	"DATABASE_URL":             "",
	"DRIVER_ROSTER_URL":        "",
	"KINESIS_LEDGER_STREAM":    "",
	"LEDGER_PUBLISH_INTERVAL":  "1h",
	"REPORT_TIMEZONE":          "UTC",
	"WEEK_START":               "sunday",
	"TOP_ROUTES_LIMIT":         reporting.DefaultTopRoutes,
	"CURRENCY_SYMBOL":          "₱",
	"PRICING_BASE_FARE":        15.0,
	"PRICING_RATE_PER_UNIT":    1.5,
	"PRICING_UNIT_KM":          2.0,
	"PRICING_SERVICE_FEE_RATE": 0.10,
	"DEMO_MODE":                false,
	"DEMO_INTERVAL":            "15s",
	"DEMO_SEED_RIDES":          200,
	"DEMO_SEED_DRIVERS":        12,
}

// Load reads configuration from the environment and, when CONFIG_FILE is
// set, from that file. Environment variables win over file values.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	level, err := parseLogLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(v.GetString("REPORT_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_TIMEZONE: %w", err)
	}

	weekStart, err := ParseWeekday(v.GetString("WEEK_START"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:       v.GetString("PORT"),
		PathPrefix: v.GetString("PATH_PREFIX"),
		LogLevel:   level,
		Storage: StorageConfig{
			Type:         strings.ToLower(v.GetString("STORAGE_TYPE")),
			AWSRegion:    v.GetString("AWS_REGION"),
			RidesTable:   v.GetString("DYNAMODB_RIDES_TABLE"),
			DriversTable: v.GetString("DYNAMODB_DRIVERS_TABLE"),
			RatingsTable: v.GetString("DYNAMODB_RATINGS_TABLE"),
			DatabaseURL:  v.GetString("DATABASE_URL"),
		},
		Roster: RosterConfig{
			URL: v.GetString("DRIVER_ROSTER_URL"),
		},
		Ledger: LedgerConfig{
			StreamName:      v.GetString("KINESIS_LEDGER_STREAM"),
			PublishInterval: durationOrDefault(v, "LEDGER_PUBLISH_INTERVAL"),
		},
		Reports: ReportsConfig{
			Location:       loc,
			WeekStart:      weekStart,
			TopRoutesLimit: v.GetInt("TOP_ROUTES_LIMIT"),
		},
		Pricing: reporting.PricingConfig{
			BaseFare:       v.GetFloat64("PRICING_BASE_FARE"),
			RatePerUnit:    v.GetFloat64("PRICING_RATE_PER_UNIT"),
			UnitKm:         v.GetFloat64("PRICING_UNIT_KM"),
			ServiceFeeRate: v.GetFloat64("PRICING_SERVICE_FEE_RATE"),
		},
		Demo: DemoConfig{
			Enabled:    v.GetBool("DEMO_MODE"),
			Interval:   durationOrDefault(v, "DEMO_INTERVAL"),
			SeedRides:  v.GetInt("DEMO_SEED_RIDES"),
			SeedDriver: v.GetInt("DEMO_SEED_DRIVERS"),
		},
		Currency: v.GetString("CURRENCY_SYMBOL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage.Type {
	case StorageMemory, StorageDynamoDB:
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_TYPE %q", c.Storage.Type))
	}

	if c.Pricing.BaseFare < 0 || c.Pricing.RatePerUnit < 0 || c.Pricing.ServiceFeeRate < 0 {
		errs = append(errs, errors.New("pricing values must not be negative"))
	}
	if c.Pricing.UnitKm <= 0 {
		errs = append(errs, errors.New("PRICING_UNIT_KM must be positive"))
	}
	if c.Reports.TopRoutesLimit < 0 {
		errs = append(errs, errors.New("TOP_ROUTES_LIMIT must not be negative"))
	}

	return errors.Join(errs...)
}

// ParseWeekday reads a weekday name such as "sunday" or "Mon".
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid WEEK_START %q", s)
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// durationOrDefault falls back to the default when the configured value does
// not parse as a positive duration.
func durationOrDefault(v *viper.Viper, key string) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err == nil && d > 0 {
		return d
	}

	fallback, _ := time.ParseDuration(defaults[key].(string))
	slog.Warn("Invalid duration, using default", "key", key, "provided", raw, "default", fallback, "error", err)
	return fallback
}
