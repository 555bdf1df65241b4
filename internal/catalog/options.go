// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"runtime"

	"github.com/wheelclass/wheelclass-mcp/internal/source"
)

// Default scan settings.
var (
	DefaultInclude = []string{"**/*.java", "**/*.go"}
	DefaultExclude = []string{
		"**/vendor/**",
		"**/node_modules/**",
		"**/.git/**",
		"**/build/**",
		"**/target/**",
		"**/*_test.go",
	}
)

const (
	DefaultMaxFileSize = 1 << 20
	DefaultCacheSize   = 4096
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithInclude replaces the include globs. Patterns are matched with
// doublestar against slash-separated paths relative to the root.
func WithInclude(patterns ...string) Option {
	return func(c *Catalog) {
		if len(patterns) > 0 {
			c.include = patterns
		}
	}
}

// WithExclude replaces the exclude globs.
func WithExclude(patterns ...string) Option {
	return func(c *Catalog) {
		c.exclude = patterns
	}
}

// WithMaxFileSize skips files larger than n bytes.
func WithMaxFileSize(n int64) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.maxFileSize = n
		}
	}
}

// WithWorkers bounds the number of files parsed concurrently.
func WithWorkers(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithCacheSize sets how many per-file extraction results are kept.
func WithCacheSize(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.cacheSize = n
		}
	}
}

// WithPipeline sets the extraction pipeline.
func WithPipeline(p *source.Pipeline) Option {
	return func(c *Catalog) {
		if p != nil {
			c.pipeline = p
		}
	}
}

func defaultWorkers() int {
	return runtime.NumCPU()
}
