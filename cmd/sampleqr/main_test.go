// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExtract_JSONStdin(t *testing.T) {
	out, err := run(t, `json:{"SampleID":"S123","RunName":"R1"}`, "extract", "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]any{"SampleID": "S123", "RunName": "R1", "SiteName": nil}, got)
}

func TestExtract_XMLFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "20233622.xml")
	content := "<?xml version=\"1.0\" ?>\n<Sample ID=\"WQ-20233622\">\n  <RunName>Run-A</RunName>\n</Sample>\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	out, err := run(t, "", "extract", path, "--field", "SampleID", "--field", "RunName", "--field", "Project")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "SampleID: WQ-20233622", lines[0])
	assert.Equal(t, "RunName: Run-A", lines[1])
	assert.Equal(t, "Project: null", lines[2])
}

func TestExtract_SentinelPolicy(t *testing.T) {
	out, err := run(t, "", "extract", "--payload", `<Sample ID="42"></Sample>`, "--absence", "sentinel", "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "42", got["SampleID"])
	assert.Equal(t, "ERROR:NOT FOUND", got["CostCode"])
}

func TestExtract_EmptyPolicyRendersNull(t *testing.T) {
	out, err := run(t, "", "extract", "--payload", `<Sample ID="42"></Sample>`, "--absence", "empty", "-o", "json")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "42", got["SampleID"])
	v, ok := got["CostCode"]
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestExtract_StrictModeMalformed(t *testing.T) {
	_, err := run(t, "", "extract", "--payload", `<Sample ID="1"><RunName>R</Sample>`, "--xml-mode", "strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed document")

	out, err := run(t, "", "extract", "--payload", `<Sample ID="1"><RunName>R</RunName><Sample>`, "-o", "json")
	require.NoError(t, err, "pattern mode tolerates malformed XML")
	assert.Contains(t, out, `"RunName": "R"`)
}

func TestExtract_Errors(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		errContains string
	}{
		{name: "unknown field", args: []string{"extract", "--payload", "json:{}", "--field", "Colour"}, errContains: "unknown field"},
		{name: "bad output", args: []string{"extract", "--payload", "json:{}", "-o", "csv"}, errContains: "invalid output format"},
		{name: "bad xml mode", args: []string{"extract", "--payload", "<a/>", "--xml-mode", "dom"}, errContains: "invalid config"},
		{name: "missing file", args: []string{"extract", filepath.Join(t.TempDir(), "nope.txt")}, errContains: "read payload"},
		{name: "undetectable payload", args: []string{"extract", "--payload", "S1,R1"}, errContains: "unsupported payload format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestCompose_RoundTrip(t *testing.T) {
	xmlOut, err := run(t, "", "compose", "--sample-id", "S-9", "--run-name", "Run 1", "--cost-code", "31201")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(xmlOut, "<?xml"))

	out, err := run(t, xmlOut, "extract", "-o", "json", "--xml-mode", "strict")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "S-9", got["SampleID"])
	assert.Equal(t, "Run 1", got["RunName"])
	assert.Equal(t, "31201", got["CostCode"])

	jsonOut, err := run(t, "", "compose", "--format", "json", "--sample-id", "S-9", "--site-name", "Ohau")
	require.NoError(t, err)
	assert.Equal(t, "json:{\"SampleID\":\"S-9\",\"SiteName\":\"Ohau\"}\n", jsonOut)
}

func TestCompose_RequiresSampleID(t *testing.T) {
	_, err := run(t, "", "compose", "--run-name", "R")
	require.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sampleqr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("absence_policy: sentinel\n"), 0o600))

	out, err := run(t, "", "--config", path, "extract", "--payload", `json:{"SampleID":"S1"}`, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"RunName": "ERROR:NOT FOUND"`)

	_, err = run(t, "", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "extract", "--payload", "json:{}")
	require.Error(t, err)
}

func TestServeContext_FollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := serveContext(parent)
	defer stop()

	require.NoError(t, ctx.Err())
	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("serve context outlived its parent")
	}

	ctx, stop = serveContext(context.Background())
	stop()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
