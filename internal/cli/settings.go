// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/restservice/config"
	"github.com/wesleyorama2/restservice/dispatch"
)

// settings is what a verb command resolved from its flags and profile.
type settings struct {
	opts           dispatch.Options
	requestTimeout time.Duration
}

// resolveSettings builds dispatch options from the selected profile, then
// applies flag overrides on top of it.
func resolveSettings(cmd *cobra.Command) (*settings, error) {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	profileName, _ := flags.GetString("profile")
	timeout, _ := flags.GetDuration("timeout")

	s := &settings{opts: dispatch.DefaultOptions(), requestTimeout: timeout}

	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		if errs := config.ValidateConfig(cfg); len(errs) > 0 {
			return nil, errors.Wrap(errs[0], "invalid config")
		}

		name, err := pickProfile(cfg, profileName)
		if err != nil {
			return nil, err
		}
		profile, err := cfg.Profile(name)
		if err != nil {
			return nil, err
		}
		if s.opts, err = profile.Options(); err != nil {
			return nil, err
		}
		if !flags.Changed("timeout") {
			if s.requestTimeout, err = profile.RequestTimeoutDuration(timeout); err != nil {
				return nil, err
			}
		}
	} else if profileName != "" {
		return nil, errors.New("--profile requires --config")
	}

	if flags.Changed("endpoint") {
		endpoint, _ := flags.GetString("endpoint")
		s.opts = s.opts.WithEndpoint(endpoint)
	}

	rawHeaders, _ := flags.GetStringArray("header")
	if len(rawHeaders) > 0 {
		headers := s.opts.RequestHeaders()
		for _, raw := range rawHeaders {
			key, value, err := parseHeader(raw)
			if err != nil {
				return nil, err
			}
			headers[key] = value
		}
		s.opts = s.opts.WithRequestHeaders(headers)
	}

	if flags.Lookup("fire-and-forget") != nil &&
		(flags.Changed("fire-and-forget") || flags.Changed("connect-timeout")) {
		enabled := s.opts.FireAndForget()
		if flags.Changed("fire-and-forget") {
			enabled, _ = flags.GetBool("fire-and-forget")
		}
		connectTimeout := s.opts.ConnectTimeout()
		if flags.Changed("connect-timeout") {
			connectTimeout, _ = flags.GetDuration("connect-timeout")
		}
		s.opts = s.opts.WithFireAndForget(enabled, connectTimeout)
	}

	return s, nil
}

// pickProfile returns name, or the only profile of cfg when name is empty.
func pickProfile(cfg *config.Config, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	if len(cfg.Profiles) == 1 {
		for only := range cfg.Profiles {
			return only, nil
		}
	}

	names := make([]string, 0, len(cfg.Profiles))
	for n := range cfg.Profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return "", errors.Newf("--profile is required, choose one of: %s", strings.Join(names, ", "))
}

// parseHeader splits "Key: Value".
func parseHeader(raw string) (string, string, error) {
	key, value, ok := strings.Cut(raw, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", errors.Newf("invalid header %q, expected 'Key: Value'", raw)
	}
	return key, strings.TrimSpace(value), nil
}

// parseQuery turns repeated key=value pairs into url.Values.
func parseQuery(pairs []string) (url.Values, error) {
	values := make(url.Values)
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.Newf("invalid query parameter %q, expected key=value", pair)
		}
		values.Add(key, value)
	}
	return values, nil
}
