// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/horizonsrc/sampleqr/internal/config"
	"github.com/horizonsrc/sampleqr/internal/payload"
	"github.com/horizonsrc/sampleqr/internal/payload/extractors"
)

// MetadataExtractSampleFields describes the extract_sample_fields tool.
var MetadataExtractSampleFields = &mcp.Tool{
	Name: "extract_sample_fields",
	Description: "Extract sample fields from a scanned QR payload. " +
		"Supported payloads: a JSON object optionally prefixed with \"json:\" (SampleID, RunName, SiteName), " +
		"and sampler XML (<Sample ID=\"...\"> with RunName, SiteName, FieldTech, Project, CostCode). " +
		"Every requested field is returned; fields not present in the payload are rendered according to " +
		"the absence policy (null, or the literal \"ERROR:NOT FOUND\") and listed under missing.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw scanned payload",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Format hint for the payload. If omitted, auto-detection is used.",
				"enum":        []string{"json", "xml"},
			},
			"fields": map[string]interface{}{
				"type":        "array",
				"description": "Fields to extract. Defaults to every field the payload format carries.",
				"items": map[string]interface{}{
					"type": "string",
					"enum": []string{"SampleID", "RunName", "SiteName", "FieldTech", "Project", "CostCode"},
				},
			},
			"absence_policy": map[string]interface{}{
				"type":        "string",
				"description": "How absent fields are rendered. Defaults to the server configuration.",
				"enum":        []string{"null", "empty", "sentinel"},
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier for the scan, used in diagnostics.",
			},
		},
	},
}

// InputExtractSampleFields is the input for the ExtractSampleFields tool.
type InputExtractSampleFields struct {
	Content       string   `json:"content"`
	Format        string   `json:"format"`
	Fields        []string `json:"fields"`
	AbsencePolicy string   `json:"absence_policy"`
	SourceID      string   `json:"source_id"`
}

// OutputExtractSampleFields is the output for the ExtractSampleFields tool.
type OutputExtractSampleFields struct {
	// Fields maps each requested field to its value, or to the absence marker.
	Fields map[string]any `json:"fields"`
	// Missing lists the requested fields the payload did not carry.
	Missing []string `json:"missing"`
	// ExtractorUsed is the name of the extractor that was selected.
	ExtractorUsed string `json:"extractor_used"`
}

// Toolset binds the tool handlers to one pipeline and absence policy.
type Toolset struct {
	pipeline *payload.Pipeline
	policy   payload.AbsencePolicy
	logger   *zap.Logger
}

// NewToolset builds the extraction pipeline described by cfg.
func NewToolset(cfg config.Config, logger *zap.Logger) (*Toolset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pipeline, err := extractors.NewPipeline(extractors.Options{
		XMLMode:    cfg.XMLModeValue(),
		JSONRepair: cfg.JSONRepair,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	return &Toolset{
		pipeline: pipeline,
		policy:   cfg.AbsencePolicyValue(),
		logger:   logger,
	}, nil
}

// ExtractSampleFields runs the extraction pipeline over one scanned payload.
func (ts *Toolset) ExtractSampleFields(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractSampleFields) (*mcp.CallToolResult, OutputExtractSampleFields, error) {
	if input.Content == "" {
		return nil, OutputExtractSampleFields{}, fmt.Errorf("content is required")
	}

	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	policy := ts.policy
	if input.AbsencePolicy != "" {
		p, err := payload.ParseAbsencePolicy(input.AbsencePolicy)
		if err != nil {
			return nil, OutputExtractSampleFields{}, err
		}
		policy = p
	}

	want := make([]payload.Field, 0, len(input.Fields))
	for _, name := range input.Fields {
		f, err := payload.ParseField(name)
		if err != nil {
			return nil, OutputExtractSampleFields{}, err
		}
		want = append(want, f)
	}

	src := payload.Payload{
		Content: input.Content,
		Format:  payload.Format(input.Format),
		ID:      sourceID,
	}

	result, err := ts.pipeline.RunWithMeta(ctx, src, want...)
	if err != nil {
		return nil, OutputExtractSampleFields{}, err
	}

	missing := make([]string, 0)
	for _, f := range result.Fields.Missing() {
		missing = append(missing, string(f))
	}
	ts.logger.Debug("extracted sample fields",
		zap.String("source_id", sourceID),
		zap.String("extractor", result.ExtractorUsed),
		zap.Strings("missing", missing))

	return nil, OutputExtractSampleFields{
		Fields:        result.Fields.Render(policy),
		Missing:       missing,
		ExtractorUsed: result.ExtractorUsed,
	}, nil
}
