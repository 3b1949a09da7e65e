// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/feeledger/internal/calculator"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	DBPath string

	// Billing
	SchoolYear       string
	DistributionMode string

	// Tolerances, as decimal strings
	RegularTolerance string
	DepositTolerance string
	OverpayTolerance string

	// Auth. An empty secret disables token checks.
	JWTSecret     string
	TokenDuration time.Duration

	LogLevel string
}

func Load() *Config {
	defaults := calculator.DefaultTolerances()

	return &Config{
		Port:   getEnv("PORT", "8080"),
		DBPath: getEnv("DB_PATH", "./data/feeledger.db"),

		SchoolYear:       getEnv("SCHOOL_YEAR", strconv.Itoa(time.Now().Year())),
		DistributionMode: getEnv("DISTRIBUTION_MODE", string(calculator.ModeSinglePass)),

		RegularTolerance: getEnv("REGULAR_TOLERANCE", defaults.RegularMonth.String()),
		DepositTolerance: getEnv("DEPOSIT_TOLERANCE", defaults.Deposit.String()),
		OverpayTolerance: getEnv("OVERPAY_TOLERANCE", defaults.Overpay.String()),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		TokenDuration: getEnvDuration("TOKEN_DURATION", 12*time.Hour),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.DBPath == "" {
		errors = append(errors, "database path cannot be empty")
	}

	if strings.TrimSpace(c.SchoolYear) == "" {
		errors = append(errors, "school year cannot be empty")
	}

	if _, err := calculator.ParseDistributionMode(c.DistributionMode); err != nil {
		errors = append(errors, fmt.Sprintf("invalid distribution mode '%s': must be 'single-pass' or 'redistribute'", c.DistributionMode))
	}

	for _, tol := range []struct{ name, value string }{
		{"regular", c.RegularTolerance},
		{"deposit", c.DepositTolerance},
		{"overpay", c.OverpayTolerance},
	} {
		d, err := decimal.NewFromString(tol.value)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s tolerance '%s': must be a decimal number", tol.name, tol.value))
		} else if d.IsNegative() {
			errors = append(errors, fmt.Sprintf("invalid %s tolerance %s: must not be negative", tol.name, tol.value))
		}
	}

	if c.JWTSecret != "" && c.TokenDuration < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token duration %v: must be at least 1 minute", c.TokenDuration))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Tolerances returns the configured settlement tolerances. Call Validate first.
func (c *Config) Tolerances() (calculator.Tolerances, error) {
	var (
		tol calculator.Tolerances
		err error
	)
	if tol.RegularMonth, err = decimal.NewFromString(c.RegularTolerance); err != nil {
		return tol, fmt.Errorf("regular tolerance: %w", err)
	}
	if tol.Deposit, err = decimal.NewFromString(c.DepositTolerance); err != nil {
		return tol, fmt.Errorf("deposit tolerance: %w", err)
	}
	if tol.Overpay, err = decimal.NewFromString(c.OverpayTolerance); err != nil {
		return tol, fmt.Errorf("overpay tolerance: %w", err)
	}
	return tol, nil
}

// AuthEnabled reports whether RPCs require an operator token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
