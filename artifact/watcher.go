package artifact

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Watcher reloads a FileSource when any of its files change and hands each
// successfully loaded bundle to OnReload. A failed reload keeps the current
// bundle in service.
type Watcher struct {
	Source   *FileSource
	Debounce time.Duration
	OnReload func(*Bundle)
	Logger   *zap.Logger
}

func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create artifact watcher")
	}
	defer fw.Close()

	watched := make(map[string]bool, len(Kinds))
	dirs := make(map[string]bool)
	for _, kind := range Kinds {
		path := filepath.Clean(w.Source.Path(kind))
		watched[path] = true
		dirs[filepath.Dir(path)] = true
	}
	// Watch directories rather than files so atomic rename-over writes
	// are still seen.
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			return errors.Wrapf(err, "watch %s", dir)
		}
	}

	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !watched[filepath.Clean(event.Name)] || event.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("artifact changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("artifact watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			bundle, err := Load(ctx, w.Source)
			if err != nil {
				logger.Error("artifact reload failed, keeping current artifacts", zap.Error(err))
				continue
			}
			logger.Info("artifacts reloaded", zap.Int("features", bundle.Features.Len()))
			if w.OnReload != nil {
				w.OnReload(bundle)
			}
		}
	}
}
