package host

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/flowpane/flowpane/pkg/errors"
)

// DefaultWatchDebounce coalesces editor write bursts (truncate, write,
// rename dances) into a single reload.
const DefaultWatchDebounce = 200 * time.Millisecond

// Watch follows the document on disk and reloads it on change until ctx
// ends. Editors rewrite files in bursts, so changes are debounced; the
// watch is on the parent directory because many editors replace the file
// instead of writing in place.
func (h *Host) Watch(ctx context.Context, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer watcher.Close()

	dir := filepath.Dir(h.path)
	if err := watcher.Add(dir); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", dir)
	}

	h.logger.Info("watching document", "path", h.path, "debounce", debounce)

	base := filepath.Base(h.path)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	reload := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			h.logger.Debug("document event", "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			h.logger.Warn("watch error", "err", err)

		case <-reload:
			if err := h.Reload(ctx); err != nil {
				// The file may be mid-replace; the next event retries.
				h.logger.Warn("reload failed", "err", err)
			}
		}
	}
}
