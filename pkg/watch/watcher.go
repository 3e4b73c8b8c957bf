// Package watch reloads the corpus when its backing file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/japaniel/tatoebando/pkg/phrases"
)

// DefaultDebounce collapses the bursts of events editors emit on save.
const DefaultDebounce = 250 * time.Millisecond

// Reloader is implemented by *phrases.Corpus.
type Reloader interface {
	Reload() *phrases.Snapshot
}

// Watcher triggers Reload after the phrase file is written, replaced or removed.
type Watcher struct {
	path     string
	target   Reloader
	logger   *zap.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// New watches the directory that holds path. The file itself need not exist yet.
func New(path string, target Reloader, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Editors often replace the file by rename, which drops a watch on the
	// file itself; watching the directory survives that.
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		target:   target,
		logger:   logger,
		debounce: DefaultDebounce,
		watcher:  fw,
	}, nil
}

// SetDebounce changes the quiet period before a reload. Call before Run.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Run processes events until ctx is canceled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.logger.Info("watching phrase file", zap.String("path", w.path))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("phrase file changed", zap.String("op", event.Op.String()))
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			snap := w.target.Reload()
			w.logger.Info("reloaded phrases after file change",
				zap.Int("total", len(snap.Phrases)),
				zap.Bool("fallback", snap.Fallback))

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
