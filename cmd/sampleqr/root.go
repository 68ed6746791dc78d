// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/horizonsrc/sampleqr/internal/config"
	"github.com/horizonsrc/sampleqr/internal/logging"
	"github.com/horizonsrc/sampleqr/internal/server"
)

// version is set at build time via -ldflags.
var version = "dev"

// rootOptions is filled by the persistent flags and PersistentPreRunE before
// any subcommand runs.
type rootOptions struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sampleqr",
		Short: "Extract sample fields from scanned QR payloads",
		Long: "sampleqr reads the payloads printed on sample bottle QR codes, either a\n" +
			"json:-prefixed object or the sampler XML layout, and reports the sample id,\n" +
			"run, site, field technician, project and cost code they carry.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.load()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(newExtractCmd(opts))
	cmd.AddCommand(newComposeCmd())
	cmd.AddCommand(newServeCmd(opts))
	cmd.Version = version
	server.Version = version
	return cmd
}

func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.logger = logger
	return nil
}
