// SPDX-License-Identifier: Apache-2.0

// Package catalog scans a project tree into an immutable Snapshot of the
// classes it declares. Per-file extraction results are cached by content
// hash, so a rescan only parses files that changed.
package catalog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wheelclass/wheelclass-mcp/internal/debug"
	"github.com/wheelclass/wheelclass-mcp/internal/source"
	"github.com/wheelclass/wheelclass-mcp/internal/source/extractors"
)

type cachedFile struct {
	hash    uint64
	classes []*source.Class
}

// Catalog owns the scan settings and the per-file cache for one root.
type Catalog struct {
	root        string
	include     []string
	exclude     []string
	maxFileSize int64
	workers     int
	cacheSize   int
	pipeline    *source.Pipeline

	cache *lru.Cache[string, cachedFile]

	mu       sync.Mutex
	snapshot *Snapshot
	stale    bool
}

// New creates a catalog rooted at root. Nothing is scanned until the
// first Snapshot call.
func New(root string, opts ...Option) (*Catalog, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", abs)
	}

	c := &Catalog{
		root:        abs,
		include:     DefaultInclude,
		exclude:     DefaultExclude,
		maxFileSize: DefaultMaxFileSize,
		workers:     defaultWorkers(),
		cacheSize:   DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.pipeline == nil {
		c.pipeline = extractors.DefaultPipeline()
	}

	cache, err := lru.New[string, cachedFile](c.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	c.cache = cache
	return c, nil
}

// Root returns the absolute project root.
func (c *Catalog) Root() string {
	return c.root
}

// Pipeline returns the extraction pipeline used for project files.
func (c *Catalog) Pipeline() *source.Pipeline {
	return c.pipeline
}

// Snapshot returns the current snapshot, rescanning the tree when there is
// none yet or it has been invalidated.
func (c *Catalog) Snapshot(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot != nil && !c.stale {
		return c.snapshot, nil
	}
	snap, err := c.scan(ctx)
	if err != nil {
		return nil, err
	}
	c.snapshot = snap
	c.stale = false
	return snap, nil
}

// Invalidate marks the snapshot stale and evicts the given files from the
// cache. Paths may be absolute or relative to the root. With no paths only
// the snapshot is dropped; unchanged files are still reused by hash.
func (c *Catalog) Invalidate(paths ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stale = true
	for _, p := range paths {
		c.cache.Remove(c.rel(p))
	}
}

// Matches reports whether a root-relative, slash-separated path is
// included and not excluded.
func (c *Catalog) Matches(rel string) bool {
	if c.excluded(rel) {
		return false
	}
	for _, pattern := range c.include {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

func (c *Catalog) excluded(rel string) bool {
	for _, pattern := range c.exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// excludedDir checks a directory against the exclude globs, also trying a
// trailing slash so "**/vendor/**" prunes "vendor" itself.
func (c *Catalog) excludedDir(rel string) bool {
	if rel == "." {
		return false
	}
	return c.excluded(rel) || c.excluded(rel+"/")
}

func (c *Catalog) rel(path string) string {
	if filepath.IsAbs(path) {
		if r, err := filepath.Rel(c.root, path); err == nil {
			path = r
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}

type scannedFile struct {
	path    string
	hash    uint64
	classes []*source.Class
	reused  bool
}

func (c *Catalog) scan(ctx context.Context) (*Snapshot, error) {
	paths, err := c.walk(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]scannedFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, rel := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			files[i] = c.load(gctx, rel)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan cancelled: %w", err)
	}

	digest := xxhash.New()
	var buf [8]byte
	snap := &Snapshot{Root: c.root}
	parsed := 0
	for _, f := range files {
		_, _ = digest.WriteString(f.path)
		binary.LittleEndian.PutUint64(buf[:], f.hash)
		_, _ = digest.Write(buf[:])
		snap.Files++
		if !f.reused {
			parsed++
		}
		snap.classes = append(snap.classes, f.classes...)
	}
	snap.Version = digest.Sum64()
	snap.index()

	debug.LogCatalog("scanned %d files (%d parsed, %d reused), %d classes, version %x",
		snap.Files, parsed, snap.Files-parsed, len(snap.classes), snap.Version)
	return snap, nil
}

// walk lists matching files in lexical order.
func (c *Catalog) walk(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.LogCatalog("skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel := c.rel(path)
		if d.IsDir() {
			if c.excludedDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !c.Matches(rel) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > c.maxFileSize {
			debug.LogCatalog("skipping oversized file %s (%d bytes)", rel, info.Size())
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", c.root, err)
	}
	return paths, nil
}

// load reads one file and extracts its classes, reusing the cached result
// when the content hash is unchanged. Failures yield no classes.
func (c *Catalog) load(ctx context.Context, rel string) scannedFile {
	content, err := os.ReadFile(filepath.Join(c.root, filepath.FromSlash(rel)))
	if err != nil {
		log.Printf("Warning: failed to read %s: %v", rel, err)
		return scannedFile{path: rel}
	}
	hash := xxhash.Sum64(content)
	if cached, ok := c.cache.Get(rel); ok && cached.hash == hash {
		return scannedFile{path: rel, hash: hash, classes: cached.classes, reused: true}
	}

	result, err := c.pipeline.ExtractWithMeta(ctx, source.Source{Path: rel, Content: content})
	if err != nil {
		switch {
		case ctx.Err() != nil:
		case errors.Is(err, source.ErrUnsupported):
			debug.LogCatalog("no extractor for %s", rel)
		default:
			log.Printf("Warning: failed to extract %s: %v", rel, err)
		}
		return scannedFile{path: rel, hash: hash}
	}
	debug.LogCatalog("%s: %d classes via %s, %d comments from annotations", rel, len(result.Classes), result.ExtractorUsed, result.Described)
	c.cache.Add(rel, cachedFile{hash: hash, classes: result.Classes})
	return scannedFile{path: rel, hash: hash, classes: result.Classes}
}
