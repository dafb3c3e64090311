// Package watch reruns a function whenever a file changes.
package watch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

type Watcher struct {
	path     string
	log      *zap.SugaredLogger
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu            sync.Mutex
	debounceTimer *time.Timer
	fire          chan struct{}
}

// New watches the directory of path so that editors replacing the file
// instead of writing it are noticed too.
func New(path string, debounce time.Duration, log *zap.SugaredLogger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, `failed to resolve "%s"`, path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, `failed to watch "%s"`, path)
	}

	return &Watcher{
		path:     abs,
		log:      log,
		watcher:  watcher,
		debounce: debounce,
		fire:     make(chan struct{}, 1),
	}, nil
}

// Run calls fn once and then again after every quiet period following a
// change. Calls never overlap. Run returns when ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func(ctx context.Context)) error {
	defer w.stopTimer()

	fn(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != w.path {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.log.Debugw("Watcher detected change", "file", event.Name, "op", event.Op.String())
				w.schedule()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", "error", err)

		case <-w.fire:
			fn(ctx)
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		select {
		case w.fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
