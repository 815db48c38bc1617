// Package watch mirrors a directory tree of Markdown files into HTML
// fragments, reconverting sources as they change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rronkkeli/md2htm/internal/logfields"
	"github.com/rronkkeli/md2htm/internal/render"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher converts Markdown files under a root directory whenever they
// appear or change. Rapid successive writes to one file collapse into a
// single conversion.
type Watcher struct {
	service  *render.Service
	root     string
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher rooted at a directory. A non-positive debounce
// selects the default.
func New(service *render.Service, root string, debounce time.Duration) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", root)
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		service:  service,
		root:     root,
		debounce: debounce,
		fsw:      fsw,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Run converts every Markdown file already present, then serves change
// events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	if err := w.addTree(w.root); err != nil {
		return err
	}
	slog.Info("watching for changes", logfields.Source(w.root))

	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Error("watcher error", logfields.Error(err))
		}
	}
}

// addTree registers every directory under dir and converts the Markdown
// files it already contains, so files written before their directory was
// watched are not missed.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		}
		if isMarkdown(path) {
			w.convert(path)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("watch new directory failed", logfields.Source(event.Name), logfields.Error(err))
			}
			return
		}
		if isMarkdown(event.Name) {
			w.schedule(event.Name)
		}
	case event.Op.Has(fsnotify.Write):
		if isMarkdown(event.Name) {
			w.schedule(event.Name)
		}
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.cancel(event.Name)
	}
}

// schedule arms the debounce timer for one path, restarting it if a
// conversion is already pending.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.convert(path)
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) convert(path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		slog.Warn("read source failed", logfields.Source(path), logfields.Error(err))
		return
	}

	result, err := w.service.Render(context.Background(), src)
	if err != nil {
		slog.Warn("conversion failed", logfields.Source(path), logfields.Error(err))
		return
	}

	target := render.OutputPath(path)
	if err := os.WriteFile(target, result.HTML, 0o644); err != nil {
		slog.Warn("write fragment failed", logfields.Target(target), logfields.Error(err))
		return
	}
	slog.Info("converted",
		logfields.Source(path),
		logfields.Target(target),
		logfields.BytesOut(len(result.HTML)))
}

func isMarkdown(path string) bool {
	return strings.HasSuffix(path, ".md")
}
