package config

import (
	"fmt"
	"strings"
	"time"

	"odosync/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value interface{}) {
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
	})
}

// Validate checks the configuration for values odosync cannot run with.
func Validate(cfg OdosyncConfig) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(cfg.Kubeconfig) == "" {
		errs.Add("kubeconfig", "is required", cfg.Kubeconfig)
	}
	validatePositiveDuration(&errs, "pollInterval", cfg.PollInterval)
	validatePositiveDuration(&errs, "debounce", cfg.Debounce)
	validatePositiveDuration(&errs, "clientTimeout", cfg.ClientTimeout)
	if cfg.MaxReadFailures < 1 {
		errs.Add("maxReadFailures", "must be at least 1", cfg.MaxReadFailures)
	}
	if cfg.DiscoveryDepth < 0 {
		errs.Add("discoveryDepth", "must not be negative", cfg.DiscoveryDepth)
	}
	if cfg.DiscoveryConcurrency < 1 {
		errs.Add("discoveryConcurrency", "must be at least 1", cfg.DiscoveryConcurrency)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		errs.Add("logLevel", "must be one of: debug, info, warn, error", cfg.LogLevel)
	}

	return errs
}

func validatePositiveDuration(errs *ValidationErrors, field string, d time.Duration) {
	if d <= 0 {
		errs.Add(field, "must be a positive duration", d)
	}
}
