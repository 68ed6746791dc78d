// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"

	"github.com/horizonsrc/sampleqr/internal/payload"
	"github.com/horizonsrc/sampleqr/internal/payload/extractors"
)

// schema constrains a decoded Config. Field names follow the json tags
// because cue encodes Go values through them.
const schema = `
absence_policy: "null" | "empty" | "sentinel"
xml_mode:       "pattern" | "strict"
json_repair:    bool
log: {
	level:  "debug" | "info" | "warn" | "error"
	format: "json" | "console"
}
`

type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Config holds the settings shared by the CLI and the MCP server.
type Config struct {
	AbsencePolicy string `yaml:"absence_policy" json:"absence_policy"`
	XMLMode       string `yaml:"xml_mode" json:"xml_mode"`
	JSONRepair    bool   `yaml:"json_repair" json:"json_repair"`
	Log           Log    `yaml:"log" json:"log"`
}

func Default() Config {
	return Config{
		AbsencePolicy: string(payload.AbsenceNull),
		XMLMode:       string(extractors.XMLModePattern),
		Log: Log{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a YAML file on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against the CUE schema.
func (c Config) Validate() error {
	ctx := cuecontext.New()
	s := ctx.CompileString(schema)
	if err := s.Err(); err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}
	v := s.Unify(ctx.Encode(c))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// AbsencePolicyValue returns the parsed absence policy.
func (c Config) AbsencePolicyValue() payload.AbsencePolicy {
	p, err := payload.ParseAbsencePolicy(c.AbsencePolicy)
	if err != nil {
		return payload.AbsenceNull
	}
	return p
}

// XMLModeValue returns the parsed XML mode.
func (c Config) XMLModeValue() extractors.XMLMode {
	m, err := extractors.ParseXMLMode(c.XMLMode)
	if err != nil {
		return extractors.XMLModePattern
	}
	return m
}
