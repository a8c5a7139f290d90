package config

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatorRequireNonEmpty(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		wantError bool
	}{
		{name: "non-empty value", value: "valid", wantError: false},
		{name: "empty value", value: "", wantError: true},
		{name: "whitespace only", value: "   ", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			v.RequireNonEmpty("test_field", tt.value)
			if v.HasErrors() != tt.wantError {
				t.Errorf("HasErrors() = %v, want %v", v.HasErrors(), tt.wantError)
			}
		})
	}
}

func TestValidatorValidateRange(t *testing.T) {
	tests := []struct {
		name      string
		value     float64
		wantError bool
	}{
		{name: "value in range", value: 50, wantError: false},
		{name: "below minimum", value: -1, wantError: true},
		{name: "above maximum", value: 101, wantError: true},
		{name: "at minimum boundary", value: 0, wantError: false},
		{name: "at maximum boundary", value: 100, wantError: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			v.ValidateRange("test_field", tt.value, 0, 100)
			if v.HasErrors() != tt.wantError {
				t.Errorf("HasErrors() = %v, want %v", v.HasErrors(), tt.wantError)
			}
		})
	}
}

func TestValidatorValidateUnique(t *testing.T) {
	v := NewValidator()
	v.ValidateUnique("agents", []string{"a", "b", "a"})
	if len(v.Errors()) != 1 {
		t.Fatalf("expected 1 error, got %d", len(v.Errors()))
	}
	if v.Errors()[0].Field != "agents" {
		t.Errorf("expected field agents, got %s", v.Errors()[0].Field)
	}
}

func TestValidatorMultipleErrors(t *testing.T) {
	v := NewValidator()
	v.RequireNonEmpty("field1", "").
		RequirePositive("field2", 0).
		ValidateOneOf("field3", "x", "a", "b")

	if len(v.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(v.Errors()))
	}

	err := v.Error()
	if err == nil {
		t.Fatal("expected combined error")
	}
	for _, field := range []string{"field1", "field2", "field3"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("combined error missing %s: %v", field, err)
		}
	}

	var errs ValidationErrors
	if !errors.As(err, &errs) || len(errs) != 3 || errs[2].Field != "field3" {
		t.Errorf("expected ValidationErrors, got %#v", err)
	}
}

func TestValidatorNoErrors(t *testing.T) {
	if err := NewValidator().RequireNonEmpty("name", "x").Error(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestValidateStoreConfigs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantError bool
	}{
		{name: "valid postgres", err: ValidatePostgresConfig("localhost", 5432, "postgres", "chainsocket", "disable")},
		{name: "postgres bad port", err: ValidatePostgresConfig("localhost", 0, "postgres", "chainsocket", "disable"), wantError: true},
		{name: "postgres bad sslmode", err: ValidatePostgresConfig("localhost", 5432, "postgres", "chainsocket", "maybe"), wantError: true},
		{name: "valid redis", err: ValidateRedisConfig("localhost:6379", 0, "chainsocket:vars:")},
		{name: "redis bad db", err: ValidateRedisConfig("localhost:6379", 16, "chainsocket:vars:"), wantError: true},
		{name: "valid mongo", err: ValidateMongoDBConfig("mongodb://localhost:27017", "chainsocket", "vars")},
		{name: "mongo missing collection", err: ValidateMongoDBConfig("mongodb://localhost:27017", "chainsocket", ""), wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (tt.err != nil) != tt.wantError {
				t.Errorf("error = %v, wantError %v", tt.err, tt.wantError)
			}
		})
	}
}

func TestValidateLLMConfig(t *testing.T) {
	if err := ValidateLLMConfig("sk-test", "gpt-3.5-turbo", 0); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
	if err := ValidateLLMConfig("", "gpt-3.5-turbo", 0); err == nil {
		t.Error("expected error for missing api key")
	}
	if err := ValidateLLMConfig("sk-test", "gpt-3.5-turbo", 2.5); err == nil {
		t.Error("expected error for temperature out of range")
	}
}

func TestValidateRateLimiterConfig(t *testing.T) {
	if err := ValidateRateLimiterConfig(1, 1); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
	if err := ValidateRateLimiterConfig(0, 1); err == nil {
		t.Error("expected error for zero rate")
	}
	if err := ValidateRateLimiterConfig(1, 0); err == nil {
		t.Error("expected error for zero burst")
	}
}
