// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/horizonsrc/sampleqr/internal/payload"
)

// DocumentLoader turns a payload reference into document bytes.
type DocumentLoader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// LoaderFunc adapts a function to DocumentLoader.
type LoaderFunc func(ctx context.Context, ref string) ([]byte, error)

func (f LoaderFunc) Load(ctx context.Context, ref string) ([]byte, error) {
	return f(ctx, ref)
}

// InlineLoader treats the reference as the document itself.
var InlineLoader = LoaderFunc(func(_ context.Context, ref string) ([]byte, error) {
	return []byte(ref), nil
})

// StructuredExtractor parses the whole payload as an XML document once and
// queries it: the sample id comes from an attribute of the root element,
// every other field is the text content of the first element in document
// order with the field's tag. Ill-formed XML is an error wrapping
// payload.ErrMalformedDocument.
type StructuredExtractor struct {
	loader DocumentLoader
	logger *zap.Logger
}

type StructuredOption func(*StructuredExtractor)

// WithLoader replaces the InlineLoader.
func WithLoader(loader DocumentLoader) StructuredOption {
	return func(e *StructuredExtractor) {
		if loader != nil {
			e.loader = loader
		}
	}
}

func WithStructuredLogger(logger *zap.Logger) StructuredOption {
	return func(e *StructuredExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func NewStructuredExtractor(opts ...StructuredOption) *StructuredExtractor {
	e := &StructuredExtractor{loader: InlineLoader, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *StructuredExtractor) Name() string {
	return "xml-strict"
}

func (e *StructuredExtractor) CanHandle(p payload.Payload) bool {
	return canHandleXML(p)
}

func (e *StructuredExtractor) DefaultSpecs() []payload.FieldSpec {
	return payload.XMLFieldSpecs
}

func (e *StructuredExtractor) Extract(ctx context.Context, p payload.Payload, specs []payload.FieldSpec) (payload.Fields, error) {
	data, err := e.loader.Load(ctx, p.Content)
	if err != nil {
		return payload.Fields{}, fmt.Errorf("failed to load XML document: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return payload.Fields{}, err
	}

	doc, err := parseDocument(data)
	if err != nil {
		e.logger.Warn("failed to parse XML payload",
			zap.String("payload_id", p.ID),
			zap.Error(err))
		return payload.Fields{}, err
	}

	fields := payload.NewFields()
	for _, spec := range specs {
		fields.Set(spec.Field, doc.lookup(spec))
	}
	return fields, nil
}

type element struct {
	name  string
	attrs []xml.Attr
	text  strings.Builder
}

// document holds every element in document order; elements[0] is the root.
type document struct {
	elements []*element
}

func (d *document) lookup(spec payload.FieldSpec) payload.Result {
	if spec.Name == "" {
		return payload.Absent()
	}
	switch spec.Strategy {
	case payload.XMLAttribute:
		for _, a := range d.elements[0].attrs {
			if a.Name.Local == spec.Name && a.Value != "" {
				return payload.Found(a.Value)
			}
		}
	case payload.XMLTag:
		for _, el := range d.elements {
			if el.name == spec.Name {
				return payload.Found(el.text.String())
			}
		}
	}
	return payload.Absent()
}

func parseDocument(data []byte) (*document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	doc := &document{}
	var open []*element
	rootClosed := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", payload.ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if rootClosed {
				return nil, fmt.Errorf("%w: more than one root element", payload.ErrMalformedDocument)
			}
			el := &element{name: t.Name.Local, attrs: t.Attr}
			doc.elements = append(doc.elements, el)
			open = append(open, el)
		case xml.EndElement:
			open = open[:len(open)-1]
			if len(open) == 0 {
				rootClosed = true
			}
		case xml.CharData:
			if len(open) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, fmt.Errorf("%w: text outside the root element", payload.ErrMalformedDocument)
				}
				continue
			}
			for _, el := range open {
				el.text.Write(t)
			}
		}
	}

	if len(doc.elements) == 0 {
		return nil, fmt.Errorf("%w: no root element", payload.ErrMalformedDocument)
	}
	return doc, nil
}
