// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/horizonsrc/sampleqr/internal/payload"
)

func newComposeCmd() *cobra.Command {
	var (
		record payload.Record
		format string
	)
	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Print a QR payload built from the given field values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := payload.Compose(record, payload.Format(format))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			if err == nil && format == string(payload.FormatJSON) {
				_, err = fmt.Fprintln(cmd.OutOrStdout())
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&format, "format", "xml", "Payload format: json or xml")
	f.StringVar(&record.SampleID, "sample-id", "", "Sample ID (required)")
	f.StringVar(&record.RunName, "run-name", "", "Run name")
	f.StringVar(&record.SiteName, "site-name", "", "Site name")
	f.StringVar(&record.FieldTech, "field-tech", "", "Field technician (xml only)")
	f.StringVar(&record.Project, "project", "", "Project (xml only)")
	f.StringVar(&record.CostCode, "cost-code", "", "Cost code (xml only)")
	_ = cmd.MarkFlagRequired("sample-id")
	return cmd
}
