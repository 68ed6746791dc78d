// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type Pipeline struct {
	extractors []Extractor
	logger     *zap.Logger
}

// NewPipeline creates a new Pipeline with the provided extractors.
// Extractors are tried in registration order.
func NewPipeline(extractors ...Extractor) *Pipeline {
	return &Pipeline{
		extractors: extractors,
		logger:     zap.NewNop(),
	}
}

// WithLogger sets the logger used for extractor selection diagnostics.
func (p *Pipeline) WithLogger(logger *zap.Logger) *Pipeline {
	if logger != nil {
		p.logger = logger
	}
	return p
}

// RunResult is the output of a successful pipeline run.
type RunResult struct {
	Fields        Fields
	ExtractorUsed string
}

// Run extracts every field the selected extractor knows about.
func (p *Pipeline) Run(ctx context.Context, payload Payload) (Fields, error) {
	result, err := p.RunWithMeta(ctx, payload)
	if err != nil {
		return Fields{}, err
	}
	return result.Fields, nil
}

// RunWithMeta extracts the requested fields, or the extractor defaults when
// none are requested.
func (p *Pipeline) RunWithMeta(ctx context.Context, payload Payload, want ...Field) (RunResult, error) {
	extractor, err := p.selectExtractor(payload)
	if err != nil {
		return RunResult{}, err
	}

	specs := SelectSpecs(extractor.DefaultSpecs(), want)
	fields, err := extractor.Extract(ctx, payload, specs)
	if err != nil {
		return RunResult{}, fmt.Errorf("extractor %q failed: %w", extractor.Name(), err)
	}

	return RunResult{
		Fields:        fields,
		ExtractorUsed: extractor.Name(),
	}, nil
}

// ExtractField looks up a single field using an explicit spec.
func (p *Pipeline) ExtractField(ctx context.Context, payload Payload, spec FieldSpec) (Result, error) {
	extractor, err := p.selectExtractor(payload)
	if err != nil {
		return Result{}, err
	}
	fields, err := extractor.Extract(ctx, payload, []FieldSpec{spec})
	if err != nil {
		return Result{}, fmt.Errorf("extractor %q failed: %w", extractor.Name(), err)
	}
	return fields.Get(spec.Field), nil
}

// selectExtractor returns the first registered extractor that can handle the given payload.
func (p *Pipeline) selectExtractor(payload Payload) (Extractor, error) {
	for _, extractor := range p.extractors {
		if extractor.CanHandle(payload) {
			p.logger.Debug("extractor selected",
				zap.String("extractor", extractor.Name()),
				zap.String("payload_id", payload.ID))
			return extractor, nil
		}
	}
	return nil, fmt.Errorf("%w: no extractor found for payload %q (format hint: %q)", ErrUnsupportedFormat, payload.ID, payload.Format)
}

// RegisteredExtractors returns the names of all currently registered extractors.
func (p *Pipeline) RegisteredExtractors() []string {
	names := make([]string, len(p.extractors))
	for i, extractor := range p.extractors {
		names[i] = extractor.Name()
	}
	return names
}
