// SPDX-License-Identifier: Apache-2.0

// Package config loads wheelclass settings from .wheelclass.yaml, an
// optional .env file and WHEELCLASS_* environment variables, in that
// order of increasing precedence, and validates the result.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/wheelclass/wheelclass-mcp/internal/catalog"
	"github.com/wheelclass/wheelclass-mcp/internal/search"
	"github.com/wheelclass/wheelclass-mcp/internal/similarity"
)

// FileName is the config file looked up in the project root.
const FileName = ".wheelclass.yaml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WHEELCLASS_"

//go:embed schema.cue
var schemaSource string

// Config holds every tunable setting.
type Config struct {
	Include          []string `yaml:"include" json:"include"`
	Exclude          []string `yaml:"exclude" json:"exclude"`
	Markers          []string `yaml:"markers" json:"markers"`
	RequireMarker    bool     `yaml:"require_marker" json:"require_marker"`
	IncludeInherited bool     `yaml:"include_inherited" json:"include_inherited"`
	Columns          []string `yaml:"columns" json:"columns"`
	MinSimilarity    float64  `yaml:"min_similarity" json:"min_similarity"`
	Limit            int      `yaml:"limit" json:"limit"`
	Debounce         string   `yaml:"debounce" json:"debounce"`
	Workers          int      `yaml:"workers" json:"workers"`
	CacheSize        int      `yaml:"cache_size" json:"cache_size"`
	MaxFileSize      int64    `yaml:"max_file_size" json:"max_file_size"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Include:          append([]string(nil), catalog.DefaultInclude...),
		Exclude:          append([]string(nil), catalog.DefaultExclude...),
		Markers:          []string{"lombok.Data", "Data", "wheelclass:data"},
		RequireMarker:    true,
		IncludeInherited: true,
		Columns:          []string{"name", "type"},
		MinSimilarity:    0.5,
		Debounce:         "300ms",
		Workers:          runtime.NumCPU(),
		CacheSize:        catalog.DefaultCacheSize,
		MaxFileSize:      catalog.DefaultMaxFileSize,
	}
}

// Load builds the configuration for a project root. path names an explicit
// config file; when empty, root/.wheelclass.yaml is used if present.
func Load(root, path string) (*Config, error) {
	cfg := Default()

	envFile := filepath.Join(root, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	lists := map[string]*[]string{
		"INCLUDE": &c.Include,
		"EXCLUDE": &c.Exclude,
		"MARKERS": &c.Markers,
		"COLUMNS": &c.Columns,
	}
	for name, dst := range lists {
		if v, ok := lookupEnv(name); ok {
			*dst = splitList(v)
		}
	}

	bools := map[string]*bool{
		"REQUIRE_MARKER":    &c.RequireMarker,
		"INCLUDE_INHERITED": &c.IncludeInherited,
	}
	for name, dst := range bools {
		if v, ok := lookupEnv(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"LIMIT":      &c.Limit,
		"WORKERS":    &c.Workers,
		"CACHE_SIZE": &c.CacheSize,
	}
	for name, dst := range ints {
		if v, ok := lookupEnv(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := lookupEnv("MAX_FILE_SIZE"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_FILE_SIZE: %w", EnvPrefix, err)
		}
		c.MaxFileSize = n
	}
	if v, ok := lookupEnv("MIN_SIMILARITY"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sMIN_SIMILARITY: %w", EnvPrefix, err)
		}
		c.MinSimilarity = f
	}
	if v, ok := lookupEnv("DEBOUNCE"); ok {
		c.Debounce = v
	}
	return nil
}

func lookupEnv(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the configuration against the embedded CUE schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	normalized := *c
	for _, list := range []*[]string{&normalized.Include, &normalized.Exclude, &normalized.Markers, &normalized.Columns} {
		if *list == nil {
			*list = []string{}
		}
	}
	value := def.Unify(ctx.Encode(normalized))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := time.ParseDuration(c.Debounce); err != nil {
		return fmt.Errorf("invalid configuration: debounce: %w", err)
	}
	return nil
}

// ColumnSelector parses the configured columns.
func (c *Config) ColumnSelector() (similarity.ColumnSelector, error) {
	return similarity.ParseColumnList(c.Columns)
}

// DebounceDelay returns the parsed debounce duration.
func (c *Config) DebounceDelay() time.Duration {
	d, err := time.ParseDuration(c.Debounce)
	if err != nil {
		return 0
	}
	return d
}

// CatalogOptions translates the scan settings.
func (c *Config) CatalogOptions() []catalog.Option {
	return []catalog.Option{
		catalog.WithInclude(c.Include...),
		catalog.WithExclude(c.Exclude...),
		catalog.WithMaxFileSize(c.MaxFileSize),
		catalog.WithWorkers(c.Workers),
		catalog.WithCacheSize(c.CacheSize),
	}
}

// SearchSettings translates the query defaults.
func (c *Config) SearchSettings() (search.Settings, error) {
	cols, err := c.ColumnSelector()
	if err != nil {
		return search.Settings{}, err
	}
	return search.Settings{
		Markers:          c.Markers,
		RequireMarker:    c.RequireMarker,
		IncludeInherited: c.IncludeInherited,
		Columns:          cols,
		MinSimilarity:    c.MinSimilarity,
	}, nil
}
