// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/wheelclass/wheelclass-mcp/internal/debug"
)

// Watcher invalidates a catalog as files under its root change.
type Watcher struct {
	catalog  *Catalog
	watcher  *fsnotify.Watcher
	onChange func(rel string)

	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Watch starts watching every non-excluded directory under the root.
// onChange, if set, is called with the root-relative path of each changed
// file after the catalog has been invalidated; it runs on the watcher
// goroutine and must not block for long.
func (c *Catalog) Watch(onChange func(rel string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &Watcher{catalog: c, watcher: fw, onChange: onChange}
	if err := w.addWatches(c.root); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to add watches starting from %s: %w", c.root, err)
	}

	w.wg.Add(1)
	go w.processEvents()
	debug.LogCatalog("watching %s", c.root)
	return w, nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.closeErr = w.watcher.Close()
		w.wg.Wait()
	})
	return w.closeErr
}

func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.catalog.excludedDir(w.catalog.rel(path)) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("File watcher error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	rel := w.catalog.rel(event.Name)
	debug.LogCatalog("event %v for %s", event.Op, rel)

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if w.catalog.excludedDir(rel) {
				return
			}
			if err := w.addWatches(event.Name); err != nil {
				log.Printf("Warning: failed to watch new directory %s: %v", rel, err)
			}
			// Files may have landed before the watch was added.
			w.catalog.Invalidate()
			w.notify(rel)
			return
		}
	}

	if w.catalog.Matches(rel) {
		w.catalog.Invalidate(rel)
		w.notify(rel)
		return
	}

	// A directory moved or deleted as a whole reports only its own path.
	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		if rel == "." || w.catalog.excludedDir(rel) {
			return
		}
		w.catalog.Invalidate()
		w.notify(rel)
	}
}

func (w *Watcher) notify(rel string) {
	if w.onChange != nil {
		w.onChange(rel)
	}
}
