package internal

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnolang/jsxlint/internal/parser"
	tt "github.com/gnolang/jsxlint/internal/types"
)

const defaultDebounce = 100 * time.Millisecond

// ReportFunc receives the result of re-linting a changed file.
type ReportFunc func(filename string, issues []tt.Issue, err error)

// Watcher re-lints source files when they change on disk.
type Watcher struct {
	engine   *Engine
	watcher  *fsnotify.Watcher
	report   ReportFunc
	logger   *zap.Logger
	debounce time.Duration
}

// NewWatcher registers dirs and all their subdirectories for watching.
// Changes are only picked up once Watch is running.
func (e *Engine) NewWatcher(dirs []string, report ReportFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}

	w := &Watcher{
		engine:   e,
		watcher:  fw,
		report:   report,
		logger:   e.logger,
		debounce: defaultDebounce,
	}
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return w, nil
}

// SetDebounce sets how long the watcher waits for further changes before
// linting.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.debounce = d
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (SkipDir(d.Name()) || w.engine.IsIgnoredPath(path)) {
			return filepath.SkipDir
		}
		return w.watcher.Add(path)
	})
}

// Watch blocks until ctx is done, linting changed files in batches.
func (w *Watcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.handleFileEvent(event, pending) {
				// wait for a while after file change to consider multiple changes as one
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-timer.C:
			w.flush(pending)
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event, pending map[string]struct{}) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	if event.Has(fsnotify.Create) {
		if err := w.addTree(event.Name); err == nil {
			w.logger.Debug("watching new path", zap.String("path", event.Name))
		}
	}

	if !parser.Supported(event.Name) || w.engine.IsIgnoredPath(event.Name) {
		return false
	}
	pending[event.Name] = struct{}{}
	return true
}

func (w *Watcher) flush(pending map[string]struct{}) {
	files := make([]string, 0, len(pending))
	for file := range pending {
		files = append(files, file)
		delete(pending, file)
	}
	sort.Strings(files)

	for _, file := range files {
		issues, err := w.engine.Run(file)
		if err != nil {
			w.logger.Debug("lint failed", zap.String("file", file), zap.Error(err))
		}
		if w.report != nil {
			w.report(file, issues, err)
		}
	}
}

// SkipDir reports whether a directory with the given name is never linted.
func SkipDir(name string) bool {
	switch name {
	case "node_modules", ".git", ".hg", ".svn":
		return true
	}
	return false
}
