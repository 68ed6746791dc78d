// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/segmentio/encoding/json"
	"go.uber.org/zap"

	"github.com/horizonsrc/sampleqr/internal/payload"
)

// JSONExtractor reads fields from a "json:"-prefixed object payload.
// A payload that fails to parse yields absent fields, never an error; the
// failure is reported to the logger instead.
type JSONExtractor struct {
	logger *zap.Logger
	repair bool
}

type JSONOption func(*JSONExtractor)

// WithJSONLogger sets the diagnostic logger.
func WithJSONLogger(logger *zap.Logger) JSONOption {
	return func(e *JSONExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRepair makes the extractor attempt a JSON repair before giving up on a
// payload that does not parse, e.g. one truncated by a partial scan.
func WithRepair(enabled bool) JSONOption {
	return func(e *JSONExtractor) {
		e.repair = enabled
	}
}

func NewJSONExtractor(opts ...JSONOption) *JSONExtractor {
	e := &JSONExtractor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *JSONExtractor) Name() string {
	return "json"
}

// CanHandle returns true for the "json" format hint, or content that starts
// with the json: tag or an object brace.
func (e *JSONExtractor) CanHandle(p payload.Payload) bool {
	switch strings.ToLower(string(p.Format)) {
	case string(payload.FormatJSON):
		return true
	case "":
		content := strings.TrimSpace(p.Content)
		return strings.HasPrefix(content, payload.JSONPrefix) || strings.HasPrefix(content, "{")
	}
	return false
}

func (e *JSONExtractor) DefaultSpecs() []payload.FieldSpec {
	return payload.JSONFieldSpecs
}

func (e *JSONExtractor) Extract(_ context.Context, p payload.Payload, specs []payload.FieldSpec) (payload.Fields, error) {
	fields := payload.NewFields()
	doc := e.decode(p)
	for _, spec := range specs {
		if spec.Strategy != payload.JSONKey || spec.Name == "" || doc == nil {
			fields.Set(spec.Field, payload.Absent())
			continue
		}
		fields.Set(spec.Field, lookupKey(doc, spec.Name))
	}
	return fields, nil
}

// decode returns the top-level object, or nil when the payload is not valid
// JSON or not an object.
func (e *JSONExtractor) decode(p payload.Payload) map[string]json.RawMessage {
	body := strings.TrimPrefix(p.Content, payload.JSONPrefix)

	var value json.RawMessage
	err := json.Unmarshal([]byte(body), &value)
	if err != nil && e.repair {
		repaired, repairErr := jsonrepair.JSONRepair(body)
		if repairErr == nil {
			err = json.Unmarshal([]byte(repaired), &value)
			if err == nil {
				e.logger.Debug("repaired JSON payload", zap.String("payload_id", p.ID))
			}
		}
	}
	if err != nil {
		e.logger.Warn("failed to parse JSON payload",
			zap.String("payload_id", p.ID),
			zap.Error(err))
		return nil
	}

	trimmed := bytes.TrimSpace(value)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil
	}
	return doc
}

// lookupKey applies the falsy rule: a missing key, "", null, false and 0 are
// all absent. Other non-string values are returned as their JSON text.
func lookupKey(doc map[string]json.RawMessage, key string) payload.Result {
	raw, ok := doc[key]
	if !ok {
		return payload.Absent()
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return payload.Absent()
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || s == "" {
			return payload.Absent()
		}
		return payload.Found(s)
	case 'n', 'f':
		return payload.Absent()
	case 't', '{', '[':
		return payload.Found(string(raw))
	}

	// Overflow parses to ±Inf with ErrRange, which is truthy.
	n, err := strconv.ParseFloat(string(raw), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return payload.Absent()
	}
	if n == 0 {
		return payload.Absent()
	}
	return payload.Found(string(raw))
}
