// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupported is returned when no extractor accepts a source.
var ErrUnsupported = errors.New("unsupported source format")

// Pipeline routes a source to the first extractor that accepts it and
// post-processes the extracted classes.
type Pipeline struct {
	extractors []Extractor
}

func NewPipeline(extractors ...Extractor) *Pipeline {
	return &Pipeline{extractors: extractors}
}

// ExtractResult carries the classes of one source and how they were built.
type ExtractResult struct {
	Classes       []*Class
	ExtractorUsed string
	// Described counts fields whose comment came from an annotation.
	Described int
}

// Extract returns the classes declared by source.
func (p *Pipeline) Extract(ctx context.Context, source Source) ([]*Class, error) {
	result, err := p.ExtractWithMeta(ctx, source)
	return result.Classes, err
}

// ExtractWithMeta is Extract plus the extractor name and description count.
func (p *Pipeline) ExtractWithMeta(ctx context.Context, source Source) (ExtractResult, error) {
	if err := ctx.Err(); err != nil {
		return ExtractResult{}, err
	}
	e := p.extractorFor(source)
	if e == nil {
		return ExtractResult{}, fmt.Errorf("%w: %q (format %q)", ErrUnsupported, source.Path, source.Format)
	}

	classes, err := e.Extract(ctx, source)
	if err != nil {
		return ExtractResult{}, fmt.Errorf("extractor %q failed on %s: %w", e.Name(), source.Path, err)
	}
	result := ExtractResult{Classes: classes, ExtractorUsed: e.Name()}
	for _, c := range classes {
		result.Described += DescribeFields(c.Fields)
	}
	return result, nil
}

// CanHandle reports whether any extractor accepts source.
func (p *Pipeline) CanHandle(source Source) bool {
	return p.extractorFor(source) != nil
}

func (p *Pipeline) extractorFor(source Source) Extractor {
	for _, e := range p.extractors {
		if e.CanHandle(source) {
			return e
		}
	}
	return nil
}

// RegisteredExtractors lists extractor names in selection order.
func (p *Pipeline) RegisteredExtractors() []string {
	names := make([]string, 0, len(p.extractors))
	for _, e := range p.extractors {
		names = append(names, e.Name())
	}
	return names
}
