// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"context"
	"regexp"
	"strings"

	"github.com/horizonsrc/sampleqr/internal/payload"
)

// PatternExtractor reads fields from sampler XML with one regular expression
// per field. There is no document parse, so damage elsewhere in the payload
// does not hide a well-formed field. Tag values are matched non-greedily and
// never across a line terminator (LF, CR, U+2028, U+2029). Only the first
// occurrence is returned, verbatim, entities included.
type PatternExtractor struct {
	// patterns holds the compiled defaults and is never written after
	// construction.
	patterns map[payload.FieldSpec]*regexp.Regexp
}

func NewPatternExtractor() *PatternExtractor {
	patterns := make(map[payload.FieldSpec]*regexp.Regexp, len(payload.XMLFieldSpecs))
	for _, spec := range payload.XMLFieldSpecs {
		patterns[spec] = compilePattern(spec)
	}
	return &PatternExtractor{patterns: patterns}
}

func (e *PatternExtractor) Name() string {
	return "xml-pattern"
}

// CanHandle returns true for the "xml" format hint, or content whose first
// non-space character opens a tag.
func (e *PatternExtractor) CanHandle(p payload.Payload) bool {
	return canHandleXML(p)
}

func (e *PatternExtractor) DefaultSpecs() []payload.FieldSpec {
	return payload.XMLFieldSpecs
}

func (e *PatternExtractor) Extract(_ context.Context, p payload.Payload, specs []payload.FieldSpec) (payload.Fields, error) {
	fields := payload.NewFields()
	for _, spec := range specs {
		re := e.pattern(spec)
		if re == nil {
			fields.Set(spec.Field, payload.Absent())
			continue
		}
		m := re.FindStringSubmatch(p.Content)
		if m == nil {
			fields.Set(spec.Field, payload.Absent())
			continue
		}
		fields.Set(spec.Field, payload.Found(m[1]))
	}
	return fields, nil
}

func (e *PatternExtractor) pattern(spec payload.FieldSpec) *regexp.Regexp {
	if re, ok := e.patterns[spec]; ok {
		return re
	}
	return compilePattern(spec)
}

// compilePattern returns the expression for spec, or nil when the spec
// cannot be matched against XML.
func compilePattern(spec payload.FieldSpec) *regexp.Regexp {
	if spec.Name == "" {
		return nil
	}
	var expr string
	switch spec.Strategy {
	case payload.XMLTag:
		// RE2's . matches \r and the Unicode separators; a JavaScript . does not.
		tag := regexp.QuoteMeta(spec.Name)
		expr = `<` + tag + `>([^\r\n\x{2028}\x{2029}]*?)</` + tag + `>`
	case payload.XMLAttribute:
		if spec.Element == "" {
			return nil
		}
		expr = `<` + regexp.QuoteMeta(spec.Element) + `\s+` + regexp.QuoteMeta(spec.Name) + `="([^"]+)">`
	default:
		return nil
	}
	return regexp.MustCompile(expr)
}

func canHandleXML(p payload.Payload) bool {
	switch strings.ToLower(string(p.Format)) {
	case string(payload.FormatXML):
		return true
	case "":
		return strings.HasPrefix(strings.TrimSpace(p.Content), "<")
	}
	return false
}
