// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"context"
	"errors"
)

// Format is the declared shape of a raw payload. An empty Format asks the
// pipeline to detect the shape from the content.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

var (
	// ErrUnsupportedFormat is returned when no registered extractor accepts a payload.
	ErrUnsupportedFormat = errors.New("unsupported payload format")
	// ErrUnknownField is returned for field names outside the known set.
	ErrUnknownField = errors.New("unknown field")
	// ErrMalformedDocument marks a payload that a strict extractor could not parse.
	ErrMalformedDocument = errors.New("malformed document")
)

// Payload is a single raw string as scanned from a QR code.
type Payload struct {
	// Content is the raw scanned text.
	Content string
	Format  Format
	ID      string
}

// Result is the outcome of looking up one field. A zero Result is absent.
type Result struct {
	Value   string
	Present bool
}

// Found returns a present Result holding v.
func Found(v string) Result {
	return Result{Value: v, Present: true}
}

// Absent returns the absent Result.
func Absent() Result {
	return Result{}
}

type Extractor interface {
	Name() string
	CanHandle(p Payload) bool
	// DefaultSpecs lists the fields this extractor knows how to locate.
	DefaultSpecs() []FieldSpec
	Extract(ctx context.Context, p Payload, specs []FieldSpec) (Fields, error)
}
