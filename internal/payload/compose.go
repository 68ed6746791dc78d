// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"fmt"
	"strings"

	"github.com/segmentio/encoding/json"
)

// JSONPrefix tags a JSON payload inside a QR code.
const JSONPrefix = "json:"

// Record is a known set of field values used to build a payload.
type Record struct {
	SampleID  string `json:"SampleID,omitempty" yaml:"sample_id"`
	RunName   string `json:"RunName,omitempty" yaml:"run_name"`
	SiteName  string `json:"SiteName,omitempty" yaml:"site_name"`
	FieldTech string `json:"-" yaml:"field_tech"`
	Project   string `json:"-" yaml:"project"`
	CostCode  string `json:"-" yaml:"cost_code"`
}

// Value returns the record's value for f.
func (r Record) Value(f Field) string {
	switch f {
	case FieldSampleID:
		return r.SampleID
	case FieldRunName:
		return r.RunName
	case FieldSiteName:
		return r.SiteName
	case FieldFieldTech:
		return r.FieldTech
	case FieldProject:
		return r.Project
	case FieldCostCode:
		return r.CostCode
	}
	return ""
}

// ComposeJSON renders the JSON payload form. Only SampleID, RunName and
// SiteName are carried; empty values are omitted.
func ComposeJSON(r Record) (string, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON payload: %w", err)
	}
	return JSONPrefix + string(body), nil
}

// XMLDeclaration is the declaration line the sampler QR tool writes.
const XMLDeclaration = `<?xml version="1.0" ?>`

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
		"\r", "&#13;", "\n", "&#10;", "\t", "&#09;",
	)
)

// ComposeXML renders the sampler XML form: the declaration followed by a
// <Sample ID="..."> element with one indented child per non-empty field.
// Text escapes only &, < and >, so quotes and apostrophes stay literal.
func ComposeXML(r Record) (string, error) {
	var b strings.Builder
	b.WriteString(XMLDeclaration)
	b.WriteString("\n")
	fmt.Fprintf(&b, "<Sample ID=\"%s\">\n", attrEscaper.Replace(r.SampleID))
	for _, f := range AllFields[1:] {
		v := r.Value(f)
		if v == "" {
			continue
		}
		fmt.Fprintf(&b, "  <%s>%s</%s>\n", f, textEscaper.Replace(v), f)
	}
	b.WriteString("</Sample>\n")
	return b.String(), nil
}

// Compose dispatches to ComposeJSON or ComposeXML.
func Compose(r Record, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return ComposeJSON(r)
	case FormatXML, FormatAuto:
		return ComposeXML(r)
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
