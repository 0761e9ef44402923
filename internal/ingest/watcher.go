package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig controls continuous directory watching.
type WatchConfig struct {
	Roots       []string            // directories to watch, recursive
	AllowedExts map[string]struct{} // nil uses the default set
	InitialScan bool                // emit files already present under the roots
	Debounce    time.Duration       // coalesce rapid write bursts per batch
}

// Watch emits the path of every newly arrived matching file under the
// configured roots until ctx is cancelled. Watcher errors surface on the
// second channel; both channels close on shutdown.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		return nil, nil, errors.New("no watch roots provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	emit := func(path string) {
		select {
		case evCh <- path:
		default:
			logger.Warn("ingest.watch.dropped", "path", path)
		}
	}

	// addTree registers every directory below root and optionally emits the
	// files already there.
	addTree := func(root string, emitFiles bool) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if emitFiles && watchAllowed(path, cfg.AllowedExts) {
				emit(path)
			}
			return nil
		})
	}
	for _, root := range cfg.Roots {
		if err := addTree(root, cfg.InitialScan); err != nil {
			_ = w.Close()
			return nil, nil, err
		}
	}
	logger.Info("ingest.watch.start", "roots", cfg.Roots, "initial_scan", cfg.InitialScan)

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer w.Close()

		pending := map[string]struct{}{}
		var timer *time.Timer
		var fire <-chan time.Time

		flush := func() {
			for p := range pending {
				emit(p)
				delete(pending, p)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case <-fire:
				flush()
				fire = nil

			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op.Has(fsnotify.Create) {
					// A created directory starts being watched; files that
					// arrived with it count as new.
					if info, statErr := os.Stat(e.Name); statErr == nil && info.IsDir() {
						if err := addTree(e.Name, true); err != nil {
							logger.Warn("ingest.watch.add_failed", "path", e.Name, "error", err)
						}
						continue
					}
				}
				if !e.Op.Has(fsnotify.Create) && !e.Op.Has(fsnotify.Write) {
					continue
				}
				if !watchAllowed(e.Name, cfg.AllowedExts) {
					continue
				}
				pending[e.Name] = struct{}{}
				if cfg.Debounce <= 0 {
					flush()
					continue
				}
				if timer == nil {
					timer = time.NewTimer(cfg.Debounce)
				} else {
					timer.Stop()
					timer.Reset(cfg.Debounce)
				}
				fire = timer.C

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("ingest.watch.error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func watchAllowed(path string, exts map[string]struct{}) bool {
	if exts == nil {
		return AllowedExt(filepath.Ext(path))
	}
	_, ok := exts[normalizeExt(filepath.Ext(path))]
	return ok
}
