// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/restservice/http"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = NewRootCmd()

// NewRootCmd builds the command tree. Each call returns independent
// commands and flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "restservice",
		Short:   "Send REST calls to a JSON service, or fire them and forget",
		Version: version,
		Long: `restservice sends GET, HEAD, DELETE, PURGE, POST, PUT and PATCH calls to a
base endpoint. Body-carrying calls can be fired and forgotten: the request
is written straight to a TCP or TLS socket and the response is never read.

Endpoints, default headers and timeouts can come from a profile file
(YAML, JSON or TOML) selected with --config and --profile.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "Profile file (.yaml, .json or .toml)")
	flags.StringP("profile", "p", "", "Profile name within the config file")
	flags.StringP("endpoint", "e", "", "Base endpoint every path is appended to")
	flags.StringArrayP("header", "H", []string{}, "Default header as 'Key: Value' (can be used multiple times)")
	flags.DurationP("timeout", "t", http.DefaultTimeout, "Request timeout for synchronous calls")
	flags.Bool("insecure", false, "Skip TLS certificate verification")
	flags.StringP("output", "o", "text", "Output format (text, json, yaml)")
	flags.BoolP("verbose", "v", false, "Print the request and debug logs")
	flags.Bool("no-color", false, "Disable colored output")

	for _, method := range verbs {
		root.AddCommand(newVerbCmd(method))
	}
	return root
}

// Execute runs RootCmd. It is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

// newLogger returns a console logger writing to w. Debug events are
// shown only when verbose is set.
func newLogger(w io.Writer, verbose, noColor bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: noColor}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
