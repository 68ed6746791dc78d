// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"fmt"
	"strings"
)

// Field is the canonical name of a value carried by a sample payload.
type Field string

const (
	FieldSampleID  Field = "SampleID"
	FieldRunName   Field = "RunName"
	FieldSiteName  Field = "SiteName"
	FieldFieldTech Field = "FieldTech"
	FieldProject   Field = "Project"
	FieldCostCode  Field = "CostCode"
)

// AllFields lists every known field in output order.
var AllFields = []Field{
	FieldSampleID,
	FieldRunName,
	FieldSiteName,
	FieldFieldTech,
	FieldProject,
	FieldCostCode,
}

// ParseField resolves a field name case-insensitively. "SampleId" and
// "sample_id" both resolve to FieldSampleID.
func ParseField(name string) (Field, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "")
	for _, f := range AllFields {
		if strings.ToLower(string(f)) == norm {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Strategy says how a field is located inside a payload.
type Strategy int

const (
	JSONKey Strategy = iota
	XMLTag
	XMLAttribute
)

func (s Strategy) String() string {
	switch s {
	case JSONKey:
		return "json-key"
	case XMLTag:
		return "xml-tag"
	case XMLAttribute:
		return "xml-attribute"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// FieldSpec binds a field to the key, tag or attribute that holds it.
// Element is only used by XMLAttribute and names the element carrying the
// attribute.
type FieldSpec struct {
	Field    Field
	Strategy Strategy
	Name     string
	Element  string
}

// JSONFieldSpecs are the keys read from a json: payload.
var JSONFieldSpecs = []FieldSpec{
	{Field: FieldSampleID, Strategy: JSONKey, Name: "SampleID"},
	{Field: FieldRunName, Strategy: JSONKey, Name: "RunName"},
	{Field: FieldSiteName, Strategy: JSONKey, Name: "SiteName"},
}

// XMLFieldSpecs are the elements read from a sampler XML payload.
var XMLFieldSpecs = []FieldSpec{
	{Field: FieldSampleID, Strategy: XMLAttribute, Name: "ID", Element: "Sample"},
	{Field: FieldRunName, Strategy: XMLTag, Name: "RunName"},
	{Field: FieldSiteName, Strategy: XMLTag, Name: "SiteName"},
	{Field: FieldFieldTech, Strategy: XMLTag, Name: "FieldTech"},
	{Field: FieldProject, Strategy: XMLTag, Name: "Project"},
	{Field: FieldCostCode, Strategy: XMLTag, Name: "CostCode"},
}

// SelectSpecs narrows specs to the requested fields, keeping the order of
// specs. A field with no matching spec gets a spec with an empty Name, which
// every extractor resolves as absent.
func SelectSpecs(specs []FieldSpec, want []Field) []FieldSpec {
	if len(want) == 0 {
		return specs
	}
	wanted := make(map[Field]bool, len(want))
	for _, f := range want {
		wanted[f] = true
	}
	out := make([]FieldSpec, 0, len(want))
	seen := make(map[Field]bool, len(want))
	for _, s := range specs {
		if wanted[s.Field] && !seen[s.Field] {
			out = append(out, s)
			seen[s.Field] = true
		}
	}
	for _, f := range want {
		if !seen[f] {
			out = append(out, FieldSpec{Field: f})
			seen[f] = true
		}
	}
	return out
}

// AbsencePolicy decides how an absent field is rendered for consumers.
type AbsencePolicy string

const (
	// AbsenceNull renders absent fields as null.
	AbsenceNull AbsencePolicy = "null"
	// AbsenceSentinel renders absent fields as NotFoundSentinel.
	AbsenceSentinel AbsencePolicy = "sentinel"
)

// NotFoundSentinel is the literal value used under AbsenceSentinel.
const NotFoundSentinel = "ERROR:NOT FOUND"

// ParseAbsencePolicy accepts "null", "empty" (alias of null) and "sentinel".
func ParseAbsencePolicy(s string) (AbsencePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "null", "empty":
		return AbsenceNull, nil
	case "sentinel":
		return AbsenceSentinel, nil
	}
	return "", fmt.Errorf("invalid absence policy %q (want null or sentinel)", s)
}

// Render returns the value a consumer sees for r: the string value when
// present, otherwise nil or the sentinel string.
func (ap AbsencePolicy) Render(r Result) any {
	if r.Present {
		return r.Value
	}
	if ap == AbsenceSentinel {
		return NotFoundSentinel
	}
	return nil
}

// Fields is an ordered mapping from field to Result.
type Fields struct {
	order  []Field
	values map[Field]Result
}

// NewFields returns an empty mapping.
func NewFields() Fields {
	return Fields{values: map[Field]Result{}}
}

// Set records r for f. Setting a field twice keeps its first position.
func (fs *Fields) Set(f Field, r Result) {
	if fs.values == nil {
		fs.values = map[Field]Result{}
	}
	if _, ok := fs.values[f]; !ok {
		fs.order = append(fs.order, f)
	}
	fs.values[f] = r
}

// Get returns the Result for f; unknown fields are absent.
func (fs Fields) Get(f Field) Result {
	return fs.values[f]
}

// Names returns the fields in insertion order.
func (fs Fields) Names() []Field {
	out := make([]Field, len(fs.order))
	copy(out, fs.order)
	return out
}

func (fs Fields) Len() int {
	return len(fs.order)
}

// Missing returns the absent fields in insertion order.
func (fs Fields) Missing() []Field {
	var out []Field
	for _, f := range fs.order {
		if !fs.values[f].Present {
			out = append(out, f)
		}
	}
	return out
}

// Render applies policy to every field.
func (fs Fields) Render(policy AbsencePolicy) map[string]any {
	out := make(map[string]any, len(fs.order))
	for _, f := range fs.order {
		out[string(f)] = policy.Render(fs.values[f])
	}
	return out
}
