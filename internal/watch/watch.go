// Package watch follows a manuscript file on disk and reports its text each time it settles after a change.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must stay quiet before a change is reported.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reports changes to one file. The file's directory is watched so editors that save by rename are followed.
type Watcher struct {
	Path     string
	Debounce time.Duration
	Logger   *slog.Logger

	// OnChange receives the file's full text whenever it differs from the last text seen. The text present when Run starts is the baseline and is not reported.
	OnChange func(text string)
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if w.OnChange == nil {
		return errors.New("watch: OnChange is nil")
	}
	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return err
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	last, err := os.ReadFile(abs)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "path", abs, "error", err)

		case <-timer.C:
			b, err := os.ReadFile(abs)
			if err != nil {
				// Mid-rename; the Create that follows will reset the timer.
				logger.Debug("watch read failed", "path", abs, "error", err)
				continue
			}
			if string(b) == string(last) {
				continue
			}
			last = b
			logger.Info("file changed", "path", abs, "bytes", len(b))
			w.OnChange(string(b))
		}
	}
}
