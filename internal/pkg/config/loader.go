// Package config provides reusable environment configuration loaders with
// validation and fail-open fallback behavior. A value that fails validation
// never aborts startup: the default is used instead and a warning is
// surfaced, so a bad environment variable cannot take the crawler down.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// LoadResult is the outcome of loading one configuration value.
// Value holds the loaded (or fallback) value; Warnings carries one message
// per fallback applied.
type LoadResult struct {
	Value           any
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString loads a string from an environment variable, returning the
// default when the variable is unset or empty. No validation is performed.
func LoadEnvString(envKey, defaultValue string) string {
	if value := os.Getenv(envKey); value != "" {
		return value
	}
	return defaultValue
}

// LoadEnvWithFallback loads a string and validates it, falling back to the
// default (with a warning) when validation fails. validator may be nil.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) LoadResult {
	value := os.Getenv(envKey)
	if value == "" {
		return LoadResult{Value: defaultValue}
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, value, defaultValue, err)
		}
	}
	return LoadResult{Value: value}
}

// LoadEnvInt loads an integer with parse and validation fallback.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) LoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult{Value: defaultValue}
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback(envKey, raw, defaultValue, err)
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, raw, defaultValue, err)
		}
	}
	return LoadResult{Value: value}
}

// LoadEnvDuration loads a time.Duration (time.ParseDuration syntax) with
// parse and validation fallback.
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) LoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult{Value: defaultValue}
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback(envKey, raw, defaultValue, err)
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(envKey, raw, defaultValue, err)
		}
	}
	return LoadResult{Value: value}
}

// LoadEnvBool loads a boolean ("true"/"false"/"1"/"0") with parse fallback.
func LoadEnvBool(envKey string, defaultValue bool) LoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return LoadResult{Value: defaultValue}
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback(envKey, raw, defaultValue, err)
	}
	return LoadResult{Value: value}
}

func fallback(envKey, raw string, defaultValue any, err error) LoadResult {
	warning := fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'",
		envKey, raw, err, defaultValue)
	return LoadResult{
		Value:           defaultValue,
		Warnings:        []string{warning},
		FallbackApplied: true,
	}
}
