// SPDX-License-Identifier: Apache-2.0

// Package extractors implements source.Extractor for Java, Go and
// YAML/JSON field manifests.
package extractors

import "github.com/wheelclass/wheelclass-mcp/internal/source"

// DefaultPipeline builds a Pipeline with all extractors registered.
// Language extractors come first; the manifest extractor only claims
// files by format hint or YAML/JSON extension.
func DefaultPipeline() *source.Pipeline {
	return source.NewPipeline(
		NewJavaExtractor(),
		NewGoExtractor(),
		NewManifestExtractor(),
	)
}
