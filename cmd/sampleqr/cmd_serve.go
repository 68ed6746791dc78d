// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/horizonsrc/sampleqr/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		Long: `Starts an MCP server over stdin/stdout exposing the extract_sample_fields
and compose_sample_payload tools. Logs go to stderr.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := server.New(root.cfg, root.logger)
			if err != nil {
				return err
			}
			ctx, stop := serveContext(cmd.Context())
			defer stop()
			return srv.ServeStdio(ctx)
		},
	}
}

// serveContext is canceled on SIGINT, SIGTERM or when parent is done.
func serveContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
