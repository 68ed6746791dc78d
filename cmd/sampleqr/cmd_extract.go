// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"github.com/horizonsrc/sampleqr/internal/payload"
	"github.com/horizonsrc/sampleqr/internal/payload/extractors"
)

type extractFlags struct {
	content string
	format  string
	fields  []string
	output  string
	absence string
	xmlMode string
	repair  bool
}

func newExtractCmd(root *rootOptions) *cobra.Command {
	flags := &extractFlags{}
	cmd := &cobra.Command{
		Use:   "extract [file|-]",
		Short: "Extract sample fields from a payload file, stdin or --payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, root, flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.content, "payload", "", "Payload text (instead of a file or stdin)")
	f.StringVar(&flags.format, "format", "", "Payload format: json or xml (default: detect)")
	f.StringSliceVar(&flags.fields, "field", nil, "Field to extract; repeatable (default: all fields of the format)")
	f.StringVarP(&flags.output, "output", "o", "yaml", "Output format: yaml or json")
	f.StringVar(&flags.absence, "absence", "", "Absent field rendering: null (alias empty) or sentinel (default from config)")
	f.StringVar(&flags.xmlMode, "xml-mode", "", "XML extraction: pattern or strict (default from config)")
	f.BoolVar(&flags.repair, "repair", false, "Attempt to repair JSON payloads that fail to parse")
	return cmd
}

func runExtract(cmd *cobra.Command, root *rootOptions, flags *extractFlags, args []string) error {
	cfg := root.cfg
	if flags.absence != "" {
		cfg.AbsencePolicy = flags.absence
	}
	if flags.xmlMode != "" {
		cfg.XMLMode = flags.xmlMode
	}
	if cmd.Flags().Changed("repair") {
		cfg.JSONRepair = flags.repair
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if flags.output != "yaml" && flags.output != "json" {
		return fmt.Errorf("invalid output format %q (want yaml or json)", flags.output)
	}

	want := make([]payload.Field, 0, len(flags.fields))
	for _, name := range flags.fields {
		field, err := payload.ParseField(name)
		if err != nil {
			return err
		}
		want = append(want, field)
	}

	src, err := readPayload(cmd, flags.content, args)
	if err != nil {
		return err
	}
	src.Format = payload.Format(flags.format)

	pipeline, err := extractors.NewPipeline(extractors.Options{
		XMLMode:    cfg.XMLModeValue(),
		JSONRepair: cfg.JSONRepair,
		Logger:     root.logger,
	})
	if err != nil {
		return err
	}
	result, err := pipeline.RunWithMeta(cmd.Context(), src, want...)
	if err != nil {
		return err
	}

	return writeFields(cmd.OutOrStdout(), flags.output, result.Fields, cfg.AbsencePolicyValue())
}

func readPayload(cmd *cobra.Command, inline string, args []string) (payload.Payload, error) {
	if inline != "" {
		return payload.Payload{Content: inline, ID: "inline"}, nil
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return payload.Payload{}, fmt.Errorf("read stdin: %w", err)
		}
		return payload.Payload{Content: string(data), ID: "stdin"}, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return payload.Payload{}, fmt.Errorf("read payload: %w", err)
	}
	return payload.Payload{Content: string(data), ID: filepath.Base(args[0])}, nil
}

func writeFields(w io.Writer, output string, fields payload.Fields, policy payload.AbsencePolicy) error {
	if output == "json" {
		data, err := json.MarshalIndent(fields.Render(policy), "", "  ")
		if err != nil {
			return fmt.Errorf("marshal fields: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	ordered := make(yaml.MapSlice, 0, fields.Len())
	for _, f := range fields.Names() {
		ordered = append(ordered, yaml.MapItem{Key: string(f), Value: policy.Render(fields.Get(f))})
	}
	data, err := yaml.Marshal(ordered)
	if err != nil {
		return fmt.Errorf("marshal fields: %w", err)
	}
	_, err = w.Write(data)
	return err
}
