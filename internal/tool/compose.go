// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/horizonsrc/sampleqr/internal/payload"
)

// MetadataComposeSamplePayload describes the compose_sample_payload tool.
var MetadataComposeSamplePayload = &mcp.Tool{
	Name: "compose_sample_payload",
	Description: "Build a QR payload from known sample fields. " +
		"The json format carries SampleID, RunName and SiteName behind a \"json:\" prefix; " +
		"the xml format is the sampler layout with every field.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"format": map[string]interface{}{
				"type": "string",
				"enum": []string{"json", "xml"},
			},
			"sample_id":  map[string]interface{}{"type": "string"},
			"run_name":   map[string]interface{}{"type": "string"},
			"site_name":  map[string]interface{}{"type": "string"},
			"field_tech": map[string]interface{}{"type": "string"},
			"project":    map[string]interface{}{"type": "string"},
			"cost_code":  map[string]interface{}{"type": "string"},
		},
	},
}

type InputComposeSamplePayload struct {
	Format    string `json:"format"`
	SampleID  string `json:"sample_id"`
	RunName   string `json:"run_name"`
	SiteName  string `json:"site_name"`
	FieldTech string `json:"field_tech"`
	Project   string `json:"project"`
	CostCode  string `json:"cost_code"`
}

type OutputComposeSamplePayload struct {
	Payload string `json:"payload"`
	Format  string `json:"format"`
}

// ComposeSamplePayload renders a payload in the requested format; xml is the default.
func (ts *Toolset) ComposeSamplePayload(_ context.Context, _ *mcp.CallToolRequest, input InputComposeSamplePayload) (*mcp.CallToolResult, OutputComposeSamplePayload, error) {
	format := payload.Format(input.Format)
	if format == payload.FormatAuto {
		format = payload.FormatXML
	}
	out, err := payload.Compose(payload.Record{
		SampleID:  input.SampleID,
		RunName:   input.RunName,
		SiteName:  input.SiteName,
		FieldTech: input.FieldTech,
		Project:   input.Project,
		CostCode:  input.CostCode,
	}, format)
	if err != nil {
		return nil, OutputComposeSamplePayload{}, err
	}
	return nil, OutputComposeSamplePayload{Payload: out, Format: string(format)}, nil
}
