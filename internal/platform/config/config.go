package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	Addr               string
	DatabaseURL        string
	JWTSecret          string
	Environment        string
	SeedTenantName     string
	SeedAdminEmail     string
	SeedAdminPassword  string
	RunMigrations      bool
	RunSeed            bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	MetricsEnabled     bool

	// Working-time policy. StandardDayHours converts between leave days and
	// TOIL hours; MinWeeklyHours is the floor for a timesheet submission.
	StandardDayHours         decimal.Decimal
	MinWeeklyHours           decimal.Decimal
	DefaultAnnualEntitlement decimal.Decimal
	MaxCarryoverDays         decimal.Decimal

	ToilExpiryMonths        int
	ToilExpiryWarningDays   int
	ToilExpirySweepInterval time.Duration
}

func Load() Config {
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		Environment:        getEnv("APP_ENV", "development"),
		SeedTenantName:     getEnv("SEED_TENANT_NAME", "Default Practice"),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", ""),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", ""),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		RunSeed:            getEnvBool("RUN_SEED", true),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1048576)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),

		StandardDayHours:         getEnvDecimal("STANDARD_DAY_HOURS", decimal.RequireFromString("7.5")),
		MinWeeklyHours:           getEnvDecimal("MIN_WEEKLY_HOURS", decimal.RequireFromString("37.5")),
		DefaultAnnualEntitlement: getEnvDecimal("DEFAULT_ANNUAL_ENTITLEMENT", decimal.NewFromInt(25)),
		MaxCarryoverDays:         getEnvDecimal("MAX_CARRYOVER_DAYS", decimal.NewFromInt(5)),

		ToilExpiryMonths:        getEnvInt("TOIL_EXPIRY_MONTHS", 6),
		ToilExpiryWarningDays:   getEnvInt("TOIL_EXPIRY_WARNING_DAYS", 30),
		ToilExpirySweepInterval: getEnvDuration("TOIL_EXPIRY_SWEEP_INTERVAL", 24*time.Hour),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if !c.StandardDayHours.IsPositive() {
		return fmt.Errorf("STANDARD_DAY_HOURS must be positive")
	}
	if !c.MinWeeklyHours.IsPositive() {
		return fmt.Errorf("MIN_WEEKLY_HOURS must be positive")
	}
	if c.ToilExpiryMonths < 0 {
		return fmt.Errorf("TOIL_EXPIRY_MONTHS must not be negative")
	}
	return nil
}
