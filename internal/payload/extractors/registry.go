// SPDX-License-Identifier: Apache-2.0

package extractors

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/horizonsrc/sampleqr/internal/payload"
)

// XMLMode picks the single XML extraction policy a pipeline uses.
type XMLMode string

const (
	// XMLModePattern tolerates malformed XML and matches each field on its own.
	XMLModePattern XMLMode = "pattern"
	// XMLModeStrict requires well-formed XML and queries the parsed document.
	XMLModeStrict XMLMode = "strict"
)

func ParseXMLMode(s string) (XMLMode, error) {
	switch XMLMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", XMLModePattern:
		return XMLModePattern, nil
	case XMLModeStrict:
		return XMLModeStrict, nil
	}
	return "", fmt.Errorf("invalid xml mode %q (want pattern or strict)", s)
}

// Options configures NewPipeline.
type Options struct {
	XMLMode    XMLMode
	JSONRepair bool
	Logger     *zap.Logger
	// Loader is only used in strict mode; nil means InlineLoader.
	Loader DocumentLoader
}

// NewPipeline builds a Pipeline with the JSON extractor and exactly one XML
// extractor. JSON is registered first so a "json:" payload is never offered
// to the XML side.
func NewPipeline(opts Options) (*payload.Pipeline, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var xmlExtractor payload.Extractor
	switch opts.XMLMode {
	case "", XMLModePattern:
		xmlExtractor = NewPatternExtractor()
	case XMLModeStrict:
		xmlExtractor = NewStructuredExtractor(
			WithLoader(opts.Loader),
			WithStructuredLogger(logger.Named("xml")),
		)
	default:
		return nil, fmt.Errorf("invalid xml mode %q", opts.XMLMode)
	}

	return payload.NewPipeline(
		NewJSONExtractor(WithJSONLogger(logger.Named("json")), WithRepair(opts.JSONRepair)),
		xmlExtractor,
	).WithLogger(logger), nil
}
