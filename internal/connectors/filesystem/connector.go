// Package filesystem discovers and watches ingestible files in a local directory.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/FamilOrujov/semsearch/internal/core/domain"
	"github.com/FamilOrujov/semsearch/internal/core/ports/driven"
	"github.com/FamilOrujov/semsearch/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// ConnectorType identifies the filesystem connector.
const ConnectorType = "filesystem"

// DefaultDebounce is how long Watch waits for a burst of events to settle.
const DefaultDebounce = 500 * time.Millisecond

// Connector scans and watches a directory tree.
// Hidden files and directories are ignored.
type Connector struct {
	root     string
	accept   func(name string) bool
	debounce time.Duration

	mu       sync.Mutex
	watchers []*fsnotify.Watcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithFilter restricts discovered files to names accepted by fn.
func WithFilter(fn func(name string) bool) Option {
	return func(c *Connector) {
		if fn != nil {
			c.accept = fn
		}
	}
}

// WithDebounce sets the quiet period before a batch of changes is emitted.
func WithDebounce(d time.Duration) Option {
	return func(c *Connector) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// New creates a connector rooted at root. Without a filter every file
// with a supported format is accepted.
func New(root string, opts ...Option) *Connector {
	c := &Connector{
		root:     root,
		accept:   func(name string) bool { return domain.FormatFromName(name).IsSupported() },
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return ConnectorType
}

// Root returns the watched directory.
func (c *Connector) Root() string {
	return c.root
}

// Scan walks the root directory and returns accepted files sorted by source.
func (c *Connector) Scan(ctx context.Context) ([]domain.SourceFile, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	var files []domain.SourceFile
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("scan %s: %v", path, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if path != c.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if f, ok := c.sourceFile(path); ok {
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Source < files[j].Source })
	logger.Debug("scan %s: %d files", c.root, len(files))
	return files, nil
}

// Watch emits debounced batches of created or modified files.
// Directories created after Watch starts are watched as well.
func (c *Connector) Watch(ctx context.Context) (<-chan []domain.SourceFile, <-chan error, error) {
	if err := c.validate(); err != nil {
		return nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := c.addTree(watcher, c.root); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	c.mu.Lock()
	c.watchers = append(c.watchers, watcher)
	c.mu.Unlock()

	batches := make(chan []domain.SourceFile)
	errs := make(chan error, 1)

	go func() {
		defer close(batches)
		defer close(errs)
		defer c.release(watcher)

		pending := make(map[string]domain.SourceFile)
		var flush <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if f, ok := c.handleFsEvent(watcher, event); ok {
					pending[f.Path] = f
					flush = time.After(c.debounce)
				}

			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- werr:
				default:
					logger.Warn("watch: %v", werr)
				}

			case <-flush:
				flush = nil
				batch := make([]domain.SourceFile, 0, len(pending))
				for _, f := range pending {
					batch = append(batch, f)
				}
				clear(pending)
				sort.Slice(batch, func(i, j int) bool { return batch[i].Source < batch[j].Source })

				select {
				case batches <- batch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return batches, errs, nil
}

// Close stops every active watch.
func (c *Connector) Close() error {
	c.mu.Lock()
	watchers := c.watchers
	c.watchers = nil
	c.mu.Unlock()

	for _, w := range watchers {
		_ = w.Close()
	}
	return nil
}

func (c *Connector) validate() error {
	info, err := os.Stat(c.root)
	if err != nil {
		return fmt.Errorf("stat %s: %w", c.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory: %w", c.root, domain.ErrInvalidInput)
	}
	return nil
}

// handleFsEvent maps a filesystem event to a file ready for ingest.
// New directories are added to the watcher and produce no file.
func (c *Connector) handleFsEvent(watcher *fsnotify.Watcher, event fsnotify.Event) (domain.SourceFile, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return domain.SourceFile{}, false
	}
	if rel, err := filepath.Rel(c.root, event.Name); err != nil || isHidden(rel) {
		return domain.SourceFile{}, false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return domain.SourceFile{}, false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && watcher != nil {
			if err := c.addTree(watcher, event.Name); err != nil {
				logger.Warn("watch %s: %v", event.Name, err)
			}
		}
		return domain.SourceFile{}, false
	}
	if !info.Mode().IsRegular() {
		return domain.SourceFile{}, false
	}
	return c.sourceFile(event.Name)
}

// addTree watches dir and every non-hidden directory below it.
func (c *Connector) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (c *Connector) release(watcher *fsnotify.Watcher) {
	c.mu.Lock()
	for i, w := range c.watchers {
		if w == watcher {
			c.watchers = append(c.watchers[:i], c.watchers[i+1:]...)
			break
		}
	}
	c.mu.Unlock()
	_ = watcher.Close()
}

func (c *Connector) sourceFile(path string) (domain.SourceFile, bool) {
	if !c.accept(filepath.Base(path)) {
		return domain.SourceFile{}, false
	}
	rel, err := filepath.Rel(c.root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	return domain.SourceFile{Path: path, Source: filepath.ToSlash(rel)}, true
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}
