package server

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/Daisy-Faith-Auma/vr-analytics-platform/internal/relay"
)

// reloadDebounce coalesces bursts of writes (editors often save a file in
// several operations) into one asset_reload notice.
const reloadDebounce = 250 * time.Millisecond

// watchAssets starts a recursive fsnotify watcher on assetsDir and notifies
// relay subscribers on Write/Create events until ctx is cancelled. Connected
// demo pages use the notice to reload during development.
func watchAssets(ctx context.Context, assetsDir string, hub *relay.Hub, log logrus.FieldLogger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Walk the directory tree and add a watcher for every subdirectory.
	if err := filepath.WalkDir(assetsDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	}); err != nil {
		return err
	}

	var (
		debounce *time.Timer
		pending  = map[string]bool{}
	)
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending[event.Name] = true
				if debounce == nil {
					debounce = time.AfterFunc(reloadDebounce, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				} else {
					debounce.Reset(reloadDebounce)
				}

				// If a new directory was created, watch it too.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watcher.Add(event.Name)
					}
				}
			}

		case <-fire:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				if rel, err := filepath.Rel(assetsDir, path); err == nil {
					changed = append(changed, rel)
				} else {
					changed = append(changed, path)
				}
			}
			pending = map[string]bool{}
			debounce = nil
			log.WithField("files", len(changed)).Info("assets changed, notifying subscribers")
			hub.Notify("asset_reload", map[string]any{"files": changed})

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			// Watcher errors are non-fatal; continue watching.
		}
	}
}
