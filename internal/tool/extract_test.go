// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizonsrc/sampleqr/internal/config"
)

func newToolset(t *testing.T, mutate func(*config.Config)) *Toolset {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(&cfg)
	}
	ts, err := NewToolset(cfg, nil)
	require.NoError(t, err)
	return ts
}

func TestExtractSampleFields(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name           string
		mutate         func(*config.Config)
		input          InputExtractSampleFields
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputExtractSampleFields)
	}{
		{
			name:        "empty content returns error",
			input:       InputExtractSampleFields{Content: ""},
			wantErr:     true,
			errContains: "content is required",
		},
		{
			name:  "json payload with a missing key",
			input: InputExtractSampleFields{Content: `json:{"SampleID":"S123","RunName":"R1"}`},
			validateOutput: func(t *testing.T, output OutputExtractSampleFields) {
				assert.Equal(t, "json", output.ExtractorUsed)
				assert.Equal(t, map[string]any{"SampleID": "S123", "RunName": "R1", "SiteName": nil}, output.Fields)
				assert.Equal(t, []string{"SiteName"}, output.Missing)
			},
		},
		{
			name:   "sentinel policy from configuration",
			mutate: func(c *config.Config) { c.AbsencePolicy = "sentinel" },
			input:  InputExtractSampleFields{Content: `<Sample ID="42"><RunName>Run-A</RunName></Sample>`},
			validateOutput: func(t *testing.T, output OutputExtractSampleFields) {
				assert.Equal(t, "xml-pattern", output.ExtractorUsed)
				assert.Equal(t, "42", output.Fields["SampleID"])
				assert.Equal(t, "Run-A", output.Fields["RunName"])
				assert.Equal(t, "ERROR:NOT FOUND", output.Fields["SiteName"])
				assert.Equal(t, "ERROR:NOT FOUND", output.Fields["Project"])
				assert.Len(t, output.Missing, 4)
			},
		},
		{
			name: "per-call policy and field selection",
			input: InputExtractSampleFields{
				Content:       `<Sample ID="42"><Project>Lakes</Project></Sample>`,
				Format:        "xml",
				Fields:        []string{"project", "cost_code"},
				AbsencePolicy: "sentinel",
			},
			validateOutput: func(t *testing.T, output OutputExtractSampleFields) {
				assert.Equal(t, map[string]any{"Project": "Lakes", "CostCode": "ERROR:NOT FOUND"}, output.Fields)
				assert.Equal(t, []string{"CostCode"}, output.Missing)
			},
		},
		{
			name:  "nothing missing yields an empty list",
			input: InputExtractSampleFields{Content: `json:{"SampleID":"1","RunName":"2","SiteName":"3"}`},
			validateOutput: func(t *testing.T, output OutputExtractSampleFields) {
				assert.NotNil(t, output.Missing)
				assert.Empty(t, output.Missing)
			},
		},
		{
			name:        "strict mode reports malformed xml",
			mutate:      func(c *config.Config) { c.XMLMode = "strict" },
			input:       InputExtractSampleFields{Content: `<Sample ID="1"><RunName>R</Sample>`},
			wantErr:     true,
			errContains: "malformed document",
		},
		{
			name:        "unknown field",
			input:       InputExtractSampleFields{Content: `json:{}`, Fields: []string{"Colour"}},
			wantErr:     true,
			errContains: "unknown field",
		},
		{
			name:        "invalid absence policy",
			input:       InputExtractSampleFields{Content: `json:{}`, AbsencePolicy: "maybe"},
			wantErr:     true,
			errContains: "invalid absence policy",
		},
		{
			name:        "unsupported format returns error",
			input:       InputExtractSampleFields{Content: "S1,R1", Format: "csv"},
			wantErr:     true,
			errContains: "unsupported payload format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newToolset(t, tt.mutate)
			_, output, err := ts.ExtractSampleFields(ctx, req, tt.input)

			if tt.wantErr {
				require.Error(t, err)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}

			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestComposeSamplePayload(t *testing.T) {
	ts := newToolset(t, nil)
	ctx := context.Background()

	_, out, err := ts.ComposeSamplePayload(ctx, &mcp.CallToolRequest{}, InputComposeSamplePayload{
		Format: "json", SampleID: "S1", SiteName: "Ohau",
	})
	require.NoError(t, err)
	assert.Equal(t, `json:{"SampleID":"S1","SiteName":"Ohau"}`, out.Payload)

	_, out, err = ts.ComposeSamplePayload(ctx, &mcp.CallToolRequest{}, InputComposeSamplePayload{SampleID: "S1", Project: "Lakes"})
	require.NoError(t, err)
	assert.Equal(t, "xml", out.Format)
	assert.Contains(t, out.Payload, `<Sample ID="S1">`)

	_, extracted, err := ts.ExtractSampleFields(ctx, &mcp.CallToolRequest{}, InputExtractSampleFields{Content: out.Payload})
	require.NoError(t, err)
	assert.Equal(t, "Lakes", extracted.Fields["Project"])

	_, _, err = ts.ComposeSamplePayload(ctx, &mcp.CallToolRequest{}, InputComposeSamplePayload{Format: "csv"})
	require.Error(t, err)
}
