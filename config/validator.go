package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Path is the dotted path to the invalid field
	Path string

	// Message describes the validation error
	Message string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidateConfig validates the configuration and returns a slice of
// validation errors, ordered by profile name. An empty slice means the
// configuration is valid.
//
// Example:
//
//	for _, err := range config.ValidateConfig(cfg) {
//	    logger.Warn().Msg(err.Error())
//	}
func ValidateConfig(config *Config) []ValidationError {
	var errors []ValidationError

	if len(config.Profiles) == 0 {
		return append(errors, ValidationError{
			Path:    "profiles",
			Message: "at least one profile is required",
		})
	}

	names := make([]string, 0, len(config.Profiles))
	for name := range config.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		profile, err := config.Profile(name)
		if err != nil {
			continue
		}
		errors = append(errors, validateProfile(name, profile)...)
	}

	return errors
}

func validateProfile(name string, profile Profile) []ValidationError {
	var errors []ValidationError
	prefix := "profiles." + name

	if profile.Endpoint == "" {
		errors = append(errors, ValidationError{
			Path:    prefix + ".endpoint",
			Message: "endpoint is required",
		})
	} else if u, err := url.Parse(profile.Endpoint); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errors = append(errors, ValidationError{
			Path:    prefix + ".endpoint",
			Message: fmt.Sprintf("endpoint must be an absolute http or https URL: %s", profile.Endpoint),
		})
	}

	for key := range profile.Headers {
		if strings.TrimSpace(key) == "" || strings.ContainsAny(key, " :\r\n") {
			errors = append(errors, ValidationError{
				Path:    prefix + ".headers",
				Message: fmt.Sprintf("invalid header name: %q", key),
			})
		}
	}

	if profile.ConnectTimeout != "" {
		if d, err := ParseDurationString(profile.ConnectTimeout); err != nil || d <= 0 {
			errors = append(errors, ValidationError{
				Path:    prefix + ".connectTimeout",
				Message: fmt.Sprintf("invalid duration: %s", profile.ConnectTimeout),
			})
		}
	}

	if profile.RequestTimeout != "" {
		if d, err := ParseDurationString(profile.RequestTimeout); err != nil || d <= 0 {
			errors = append(errors, ValidationError{
				Path:    prefix + ".requestTimeout",
				Message: fmt.Sprintf("invalid duration: %s", profile.RequestTimeout),
			})
		}
	}

	return errors
}
