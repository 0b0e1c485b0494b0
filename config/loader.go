package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/restservice/dispatch"
)

// Config is the top-level structure of a profile file.
type Config struct {
	// Variables are available to every profile as {{name}}
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty" toml:"variables,omitempty"`

	// Profiles maps a profile name to its dispatch settings
	Profiles map[string]Profile `json:"profiles" yaml:"profiles" toml:"profiles"`
}

// Profile holds the dispatch settings of one target service.
type Profile struct {
	// Endpoint is the base URL every call path is appended to
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`

	// Headers are the default request headers
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty" toml:"headers,omitempty"`

	// Accept overrides the Accept type. An empty string disables it.
	Accept *string `json:"accept,omitempty" yaml:"accept,omitempty" toml:"accept,omitempty"`

	// FireAndForget makes POST, PUT and PATCH skip the response
	FireAndForget bool `json:"fireAndForget,omitempty" yaml:"fireAndForget,omitempty" toml:"fireAndForget,omitempty"`

	// ConnectTimeout bounds fire-and-forget connects ("5s", "200 seconds")
	ConnectTimeout string `json:"connectTimeout,omitempty" yaml:"connectTimeout,omitempty" toml:"connectTimeout,omitempty"`

	// RequestTimeout bounds synchronous requests
	RequestTimeout string `json:"requestTimeout,omitempty" yaml:"requestTimeout,omitempty" toml:"requestTimeout,omitempty"`

	// Variables override the file-level variables for this profile
	Variables map[string]string `json:"variables,omitempty" yaml:"variables,omitempty" toml:"variables,omitempty"`
}

// LoadConfig loads a profile file.
//
// The file format is determined by extension:
//   - .yaml, .yml -> YAML
//   - .json -> JSON
//   - .toml -> TOML
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	return ParseConfig(data, path)
}

// ParseConfig parses profile data. The format follows the extension of
// path and defaults to YAML.
func ParseConfig(data []byte, path string) (*Config, error) {
	var config Config

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON config")
		}
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrap(err, "failed to parse TOML config")
		}
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, errors.Wrap(err, "failed to parse YAML config")
		}
	}

	return &config, nil
}

// Profile returns the named profile with variables substituted.
func (c *Config) Profile(name string) (Profile, error) {
	profile, ok := c.Profiles[name]
	if !ok {
		return Profile{}, errors.Newf("profile not found: %s", name)
	}

	vars := MergeEnvironments(c.Variables, profile.Variables)
	profile.Endpoint = ProcessEnvironment(profile.Endpoint, vars)
	profile.Headers = ProcessEnvironmentInMap(profile.Headers, vars)
	return profile, nil
}

// Options converts the named profile to dispatch options.
func (c *Config) Options(name string) (dispatch.Options, error) {
	profile, err := c.Profile(name)
	if err != nil {
		return dispatch.Options{}, err
	}
	return profile.Options()
}

// Options converts p to dispatch options.
func (p Profile) Options() (dispatch.Options, error) {
	opts := dispatch.DefaultOptions().WithEndpoint(p.Endpoint)
	if len(p.Headers) > 0 {
		opts = opts.WithRequestHeaders(p.Headers)
	}
	if p.Accept != nil {
		opts = opts.WithAccept(*p.Accept)
	}

	var timeout time.Duration
	if p.ConnectTimeout != "" {
		d, err := ParseDurationString(p.ConnectTimeout)
		if err != nil {
			return dispatch.Options{}, errors.Wrapf(err, "connectTimeout %q", p.ConnectTimeout)
		}
		timeout = d
	}
	if p.FireAndForget || timeout > 0 {
		opts = opts.WithFireAndForget(p.FireAndForget, timeout)
	}
	return opts, nil
}

// RequestTimeoutDuration returns the parsed request timeout, or fallback
// when none is set.
func (p Profile) RequestTimeoutDuration(fallback time.Duration) (time.Duration, error) {
	if p.RequestTimeout == "" {
		return fallback, nil
	}
	d, err := ParseDurationString(p.RequestTimeout)
	if err != nil {
		return 0, errors.Wrapf(err, "requestTimeout %q", p.RequestTimeout)
	}
	return d, nil
}

// ParseDurationString parses durations like "30s", "5m" or "200 seconds".
// A bare integer is read as seconds.
func ParseDurationString(duration string) (time.Duration, error) {
	duration = strings.TrimSpace(duration)
	if duration == "" {
		return 0, errors.New("duration cannot be empty")
	}

	if d, err := time.ParseDuration(duration); err == nil {
		return d, nil
	}
	if d, err := time.ParseDuration(duration + "s"); err == nil && !strings.ContainsAny(duration, "hmsuµn") {
		return d, nil
	}

	duration = strings.ReplaceAll(strings.ToLower(duration), " ", "")
	replacer := strings.NewReplacer(
		"seconds", "s", "second", "s",
		"minutes", "m", "minute", "m",
		"hours", "h", "hour", "h",
	)
	return time.ParseDuration(replacer.Replace(duration))
}

// ProcessEnvironment replaces {{name}} placeholders with values from env.
//
// Example:
//
//	url := config.ProcessEnvironment("{{host}}/users/{{userId}}", map[string]string{
//	    "host":   "https://api.example.com",
//	    "userId": "123",
//	})
//	// Result: "https://api.example.com/users/123"
func ProcessEnvironment(input string, env map[string]string) string {
	result := input
	for key, value := range env {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// ProcessEnvironmentInMap applies ProcessEnvironment to every value of input.
func ProcessEnvironmentInMap(input map[string]string, env map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	result := make(map[string]string, len(input))
	for key, value := range input {
		result[key] = ProcessEnvironment(value, env)
	}
	return result
}

// MergeEnvironments merges two variable sets, with override taking precedence.
func MergeEnvironments(base, override map[string]string) map[string]string {
	result := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		result[key] = value
	}
	for key, value := range override {
		result[key] = value
	}
	return result
}
