// Copyright (c) 2025, Wesley Brown
// All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/restservice/dispatch"
	"github.com/wesleyorama2/restservice/http"
	"github.com/wesleyorama2/restservice/internal/output"
	"github.com/wesleyorama2/restservice/pkg/jsonpath"
)

var verbs = []string{
	nethttp.MethodGet,
	nethttp.MethodHead,
	nethttp.MethodDelete,
	dispatch.MethodPurge,
	nethttp.MethodPost,
	nethttp.MethodPut,
	nethttp.MethodPatch,
}

func carriesBody(method string) bool {
	switch method {
	case nethttp.MethodPost, nethttp.MethodPut, nethttp.MethodPatch:
		return true
	}
	return false
}

// newVerbCmd returns the subcommand sending method.
func newVerbCmd(method string) *cobra.Command {
	name := strings.ToLower(method)
	cmd := &cobra.Command{
		Use:   name + " PATH",
		Short: fmt.Sprintf("Send a %s request to the endpoint joined with PATH", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerb(cmd, method, args[0])
		},
	}

	flags := cmd.Flags()
	flags.Bool("full", false, "Print the full response instead of the body")
	flags.String("schema", "", "JSON Schema file the response body must satisfy")
	flags.String("select", "", "Print only the value at a JSON path such as $.items[0].id")
	if carriesBody(method) {
		flags.StringP("data", "d", "", "JSON body to send")
		flags.Bool("fire-and-forget", false, "Write the request to the socket and do not wait for the response")
		flags.Duration("connect-timeout", dispatch.DefaultConnectTimeout, "Connect timeout for fire-and-forget calls")
	} else {
		flags.StringArrayP("query", "q", []string{}, "Query parameter as key=value (can be used multiple times)")
	}
	return cmd
}

func runVerb(cmd *cobra.Command, method, path string) error {
	flags := cmd.Flags()
	verbose, _ := flags.GetBool("verbose")
	noColor, _ := flags.GetBool("no-color")
	insecure, _ := flags.GetBool("insecure")
	full, _ := flags.GetBool("full")
	schemaPath, _ := flags.GetString("schema")
	selectPath, _ := flags.GetString("select")
	formatName, _ := flags.GetString("output")

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}
	if selectPath != "" && format != output.FormatText {
		return errors.New("--select cannot be combined with structured output")
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if f, ok := stdout.(*os.File); !ok || !output.ShouldColor(noColor, f) {
		noColor = true
	}
	formatter := output.NewFormatter(verbose, noColor)
	logger := newLogger(stderr, verbose, noColor)

	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	var schema string
	if schemaPath != "" {
		raw, err := os.ReadFile(schemaPath)
		if err != nil {
			return errors.Wrap(err, "failed to read schema")
		}
		schema = string(raw)
	}

	params, err := callParams(cmd, method)
	if err != nil {
		return err
	}
	callOpts := []dispatch.CallOption{dispatch.WithParams(params)}
	if full {
		callOpts = append(callOpts, dispatch.WithFullResponse())
	}

	httpClient, tlsConfig := newHTTPClient(insecure)
	dispatcher := dispatch.New(
		dispatch.WithLogger(logger),
		dispatch.WithTLSConfig(tlsConfig),
		dispatch.WithDoer(http.NewClient(
			http.WithHTTPClient(httpClient),
			http.WithTimeout(s.requestTimeout),
			http.WithHeader("User-Agent", userAgent()),
			http.WithHTTPErrors(true),
		)),
	)

	desc, err := dispatch.BuildDescriptor(method, s.opts, path, params, nil)
	if err != nil {
		return err
	}
	if verbose && format == output.FormatText {
		fmt.Fprint(stdout, formatter.FormatDescriptor(desc))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), s.requestTimeout)
	defer cancel()

	result, err := dispatcher.Dispatch(ctx, method, s.opts, path, callOpts...)
	if err == nil && schema != "" && !result.Fired {
		err = validateResult(result, schema)
	}

	if format != output.FormatText {
		encoded, encErr := output.Encode(format, output.NewResultData(desc, result, err))
		if encErr != nil {
			return encErr
		}
		fmt.Fprint(stdout, encoded)
		return err
	}

	if err == nil && selectPath != "" && !result.Fired {
		var selected string
		if selected, err = selectValue(result, selectPath); err == nil {
			fmt.Fprintln(stdout, selected)
			return nil
		}
	}
	if err != nil {
		fmt.Fprint(stderr, formatter.FormatError(err))
		return err
	}
	fmt.Fprint(stdout, formatter.FormatResult(result))
	if schema != "" && !result.Fired {
		fmt.Fprintf(stdout, "%s response matches schema\n", output.SuccessIcon(noColor))
	}
	return nil
}

// callParams returns the params of the call: the parsed --data body for
// body-carrying methods, the --query pairs otherwise.
func callParams(cmd *cobra.Command, method string) (interface{}, error) {
	if !carriesBody(method) {
		pairs, _ := cmd.Flags().GetStringArray("query")
		if len(pairs) == 0 {
			return nil, nil
		}
		return parseQuery(pairs)
	}

	data, _ := cmd.Flags().GetString("data")
	if data == "" {
		return nil, nil
	}
	decoder := json.NewDecoder(bytes.NewReader([]byte(data)))
	decoder.UseNumber()
	var body interface{}
	if err := decoder.Decode(&body); err != nil {
		return nil, errors.Wrap(err, "--data is not valid JSON")
	}
	return body, nil
}

// newHTTPClient returns the client used by synchronous calls and the TLS
// settings it shares with the fire-and-forget connector. Proxies are taken
// from the environment.
func newHTTPClient(insecure bool) (*nethttp.Client, *tls.Config) {
	tlsConfig := &tls.Config{InsecureSkipVerify: insecure}
	transport := nethttp.DefaultTransport.(*nethttp.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	return &nethttp.Client{Transport: transport}, tlsConfig
}

func userAgent() string {
	return "restservice/" + version
}

// responseBody returns the body of result, whether it came back whole or
// unwrapped. It is nil for fired calls.
func responseBody(result *dispatch.Result) (*dispatch.Body, error) {
	if result.Response != nil {
		raw, err := result.Response.GetBody()
		if err != nil {
			return nil, err
		}
		return &dispatch.Body{Kind: dispatch.BodyJSON, Raw: raw}, nil
	}
	return result.Body, nil
}

// validateResult checks the body of result against schema.
func validateResult(result *dispatch.Result, schema string) error {
	body, err := responseBody(result)
	if err != nil || body == nil {
		return err
	}
	return errors.Wrap(body.Validate(schema), "response does not match schema")
}

// selectValue returns the value at path in the body of result.
func selectValue(result *dispatch.Result, path string) (string, error) {
	body, err := responseBody(result)
	if err != nil {
		return "", err
	}
	if body == nil {
		return "", errors.New("response has no body")
	}
	value, err := jsonpath.Extract(body.Raw, path)
	return value, errors.Wrapf(err, "--select %s", path)
}
