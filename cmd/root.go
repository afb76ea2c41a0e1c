// Copyright (c) 2023 The KBase Project and its Contributors
// Copyright (c) 2023 Cohere Consulting, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package cmd implements the gdcloadfiles command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kbase/gdcloadfiles/config"
	"github.com/kbase/gdcloadfiles/gdc"
	"github.com/kbase/gdcloadfiles/loadfiles"
	"github.com/kbase/gdcloadfiles/logging"
	"github.com/kbase/gdcloadfiles/manifest"
	"github.com/kbase/gdcloadfiles/metrics"
	"github.com/kbase/gdcloadfiles/resolver"
)

// environment variables start with this (e.g. GDCLOAD_ALL_CASES)
const envPrefix = "GDCLOAD"

// NewRootCmd creates the gdcloadfiles command.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	closeLog := func() error { return nil }
	cmd := &cobra.Command{
		Use:   "gdcloadfiles [flags] <manifest>",
		Short: "Builds workspace load files from a GDC manifest",
		Long: `gdcloadfiles reads a GDC download manifest, fetches the metadata of every
file it lists, and attributes each file to a participant, sample, or
tumor/normal pair. It writes tab-delimited load files for those entities,
their set memberships, and the workspace attributes.

Configuration precedence (highest to lowest):
  1. command line flags
  2. environment variables (GDCLOAD_*)
  3. the YAML configuration file (--config)
  4. built-in defaults

Environment variables:
  GDCLOAD_LEGACY          query the legacy archive
  GDCLOAD_ALL_CASES       attach multi-case files to every case they name
  GDCLOAD_OUTPUT          output directory
  GDCLOAD_RESOLVE         uuid-to-URL table
  GDCLOAD_CACHE           metadata cache database
  GDCLOAD_LOG_LEVEL       log level (debug/info/warn/error)
  GDCLOAD_TOKEN_KEY       Fernet key decrypting the token file`,
		Version:       Version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			closeLog, err = bootstrap(v)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLog()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, args[0])
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "YAML configuration file")
	flags.BoolP("legacy", "l", false, "query the legacy archive instead of the current API")
	flags.BoolP("all-cases", "a", false, "attach multi-case files to every case they name")
	flags.StringP("resolve", "r", "", "two-column TSV mapping file uuids to URLs")
	flags.String("resolver-cache", "", "sqlite cache built from the --resolve table")
	flags.StringP("output", "o", "", "directory in which load files are written")
	flags.Bool("datapackage", true, "write a data package descriptor next to the load files")
	flags.String("cache", "", "bolt database caching metadata records between runs")
	flags.String("metrics-file", "", "write run counters to this file in Prometheus text format")
	flags.Bool("progress", false, "show a progress bar")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	cmd.SetVersionTemplate("{{.Version}}\n")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.BindPFlags(flags)
	v.BindEnv("token_key")
	v.AutomaticEnv()
	return cmd
}

// Execute runs the command, exiting with a non-zero status on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gdcloadfiles: %s\n", err.Error())
		os.Exit(1)
	}
}

// reads the configuration file, applies overrides, and sets up logging,
// returning a function that closes the log
func bootstrap(v *viper.Viper) (func() error, error) {
	noop := func() error { return nil }
	var data []byte
	if path := v.GetString("config"); path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return noop, fmt.Errorf("Couldn't read configuration file: %w", err)
		}
	}
	if err := config.Init(data); err != nil {
		return noop, err
	}
	applyOverrides(v)
	if err := config.Validate(); err != nil {
		return noop, err
	}
	return logging.Init(config.Logging)
}

// copies flags and environment variables that were given over the
// configuration
func applyOverrides(v *viper.Viper) {
	if v.IsSet("legacy") {
		if v.GetBool("legacy") {
			config.GDC.API = gdc.Legacy.Name
		} else {
			config.GDC.API = gdc.Current.Name
		}
	}
	if v.IsSet("all-cases") {
		config.Output.AllCases = v.GetBool("all-cases")
	}
	if v.IsSet("resolve") {
		config.Resolver.Table = v.GetString("resolve")
	}
	if v.IsSet("resolver-cache") {
		config.Resolver.Cache = v.GetString("resolver-cache")
	}
	if v.IsSet("cache") {
		config.GDC.Cache = v.GetString("cache")
	}
	if v.IsSet("output") {
		config.Output.Directory = v.GetString("output")
	}
	if v.IsSet("datapackage") {
		config.Output.DataPackage = v.GetBool("datapackage")
	}
	if v.IsSet("log-level") {
		config.Logging.Level = v.GetString("log-level")
	}
}

func run(ctx context.Context, v *viper.Viper, manifestPath string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	entries, err := manifest.ReadFile(manifestPath)
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("read %d file(s) from %s", len(entries), manifestPath))

	version, err := gdc.VersionNamed(config.GDC.API)
	if err != nil {
		return err
	}
	root := config.Root()
	if root == "" {
		root = version.Root
	}
	client := gdc.NewClient(root, time.Duration(config.GDC.Timeout)*time.Second)
	if config.GDC.TokenFile != "" {
		client.Token, err = gdc.ReadToken(config.GDC.TokenFile, v.GetString("token_key"))
		if err != nil {
			return err
		}
	}

	var service gdc.Service = client
	if config.GDC.Cache != "" {
		cache, err := gdc.NewCachedService(client, config.GDC.Cache)
		if err != nil {
			return err
		}
		defer cache.Close()
		service = cache
	}

	var urls resolver.Resolver = resolver.DataResolver{Root: root}
	if config.Resolver.Table != "" {
		table, err := resolver.NewTableResolver(config.Resolver.Table, config.Resolver.Cache)
		if err != nil {
			return err
		}
		defer table.Close()
		urls = table
	}

	options := loadfiles.Options{
		Version:  version,
		AllCases: config.Output.AllCases,
		Resolver: urls,
		Retry: loadfiles.RetryPolicy{
			Attempts:   config.Retry.Attempts,
			Backoff:    time.Duration(config.Retry.Backoff) * time.Millisecond,
			MaxBackoff: time.Duration(config.Retry.MaxBackoff) * time.Millisecond,
		},
	}
	metricsFile := v.GetString("metrics-file")
	if metricsFile != "" {
		options.Metrics = metrics.NewRecorder()
	}
	if v.GetBool("progress") {
		bar := pb.Full.Start(len(entries))
		bar.Set("prefix", "files ")
		bar.Set(pb.CleanOnFinish, true)
		defer bar.Finish()
		options.Progress = func() { bar.Increment() }
	}

	builder := loadfiles.NewBuilder(service, options)
	if _, err = builder.Run(ctx, entries); err != nil {
		return err
	}

	emitter := &loadfiles.TSVEmitter{
		Directory:   config.Output.Directory,
		Prefix:      manifest.Prefix(manifestPath),
		DataPackage: config.Output.DataPackage,
		Source:      manifestPath,
	}
	if err = emitter.Emit(builder.Result()); err != nil {
		return err
	}
	if metricsFile != "" {
		if err = options.Metrics.WriteTextfile(metricsFile); err != nil {
			return err
		}
	}
	return nil
}
