package config

import (
	"fmt"
	"slices"
	"strings"
)

// ValidationError is one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is every failure found by a Validator.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("configuration validation failed:")
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return b.String()
}

// Validator collects failures across chained checks
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates an empty validator
func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) add(field, format string, args ...any) *Validator {
	v.errors = append(v.errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	return v
}

// RequireNonEmpty fails on a blank value
func (v *Validator) RequireNonEmpty(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		return v.add(field, "value cannot be empty")
	}
	return v
}

// RequirePositive fails unless value > 0
func (v *Validator) RequirePositive(field string, value float64) *Validator {
	if value <= 0 {
		return v.add(field, "value must be positive, got %g", value)
	}
	return v
}

// ValidateRange fails unless min <= value <= max
func (v *Validator) ValidateRange(field string, value, min, max float64) *Validator {
	if value < min || value > max {
		return v.add(field, "value must be between %g and %g, got %g", min, max, value)
	}
	return v
}

// ValidateOneOf fails unless value is one of allowed
func (v *Validator) ValidateOneOf(field, value string, allowed ...string) *Validator {
	if !slices.Contains(allowed, value) {
		return v.add(field, "value must be one of %v, got %q", allowed, value)
	}
	return v
}

// ValidateUnique fails once for every repeated name
func (v *Validator) ValidateUnique(field string, names []string) *Validator {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			v.add(field, "duplicate name %q", name)
		}
		seen[name] = true
	}
	return v
}

// HasErrors reports whether any check failed
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the failures so far
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

// Error returns the failures as a ValidationErrors, or nil
func (v *Validator) Error() error {
	if !v.HasErrors() {
		return nil
	}
	return v.errors
}

// ValidatePostgresConfig checks the settings of the postgres memory store.
func ValidatePostgresConfig(host string, port int, user, dbName, sslMode string) error {
	return NewValidator().
		RequireNonEmpty("host", host).
		ValidateRange("port", float64(port), 1, 65535).
		RequireNonEmpty("user", user).
		RequireNonEmpty("dbName", dbName).
		ValidateOneOf("sslMode", sslMode, "disable", "require", "verify-ca", "verify-full").
		Error()
}

// ValidateRedisConfig checks the settings of the redis memory store.
func ValidateRedisConfig(addr string, db int, prefix string) error {
	return NewValidator().
		RequireNonEmpty("addr", addr).
		ValidateRange("db", float64(db), 0, 15).
		RequireNonEmpty("prefix", prefix).
		Error()
}

// ValidateMongoDBConfig checks the settings of the mongo memory store.
func ValidateMongoDBConfig(uri, database, collection string) error {
	return NewValidator().
		RequireNonEmpty("uri", uri).
		RequireNonEmpty("database", database).
		RequireNonEmpty("collection", collection).
		Error()
}

// ValidateLLMConfig checks a generator's key, model and sampling temperature.
func ValidateLLMConfig(apiKey, model string, temperature float64) error {
	return NewValidator().
		RequireNonEmpty("apiKey", apiKey).
		RequireNonEmpty("model", model).
		ValidateRange("temperature", temperature, 0, 2).
		Error()
}

// ValidateRateLimiterConfig checks token bucket settings.
func ValidateRateLimiterConfig(perSecond float64, burst int) error {
	return NewValidator().
		RequirePositive("perSecond", perSecond).
		RequirePositive("burst", float64(burst)).
		Error()
}
