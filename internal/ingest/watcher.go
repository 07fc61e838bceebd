package ingest

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

type WatchConfig struct {
	Roots       []string            // directories to watch (recursive)
	AllowedExts map[string]struct{} // nil -> constants.AllowedExtensions
	InitialScan bool                // emit files already present under Roots
	SkipHidden  bool
	Debounce    time.Duration // coalesce rapid create/write bursts per path
}

// StartWatcher emits the path of every supported file created or written
// under cfg.Roots. Both channels are closed when ctx ends.
func StartWatcher(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(cfg.Roots) == 0 {
		logger.Error("watcher start failed: no roots provided")
		return nil, nil, errors.New("no roots provided")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("failed to create fsnotify watcher", "error", err)
		return nil, nil, err
	}

	var initial []string
	for _, root := range cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if cfg.SkipHidden && path != root && IsHidden(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && AllowedExt(filepath.Ext(path), cfg.AllowedExts) {
				initial = append(initial, path)
			}
			return nil
		})
		if err != nil {
			logger.Error("failed to add root directory", "root", root, "error", err)
			_ = w.Close()
			return nil, nil, err
		}
	}
	sort.Strings(initial)

	evCh := make(chan string, 256)
	errCh := make(chan error, 1)
	go (&watchLoop{cfg: cfg, w: w, out: evCh, errs: errCh, logger: logger}).run(ctx, initial)

	logger.Info("watching inbox", "roots", cfg.Roots, "initial_files", len(initial))
	return evCh, errCh, nil
}

type watchLoop struct {
	cfg    WatchConfig
	w      *fsnotify.Watcher
	out    chan<- string
	errs   chan<- error
	logger *slog.Logger
}

func (l *watchLoop) run(ctx context.Context, initial []string) {
	defer close(l.out)
	defer close(l.errs)
	defer func() {
		if err := l.w.Close(); err != nil {
			l.logger.Warn("failed to close watcher", "error", err)
		}
	}()

	for _, p := range initial {
		if !l.emit(ctx, p) {
			return
		}
	}

	pending := map[string]struct{}{}
	var timer *time.Timer
	var fire <-chan time.Time

	flush := func() bool {
		paths := make([]string, 0, len(pending))
		for p := range pending {
			paths = append(paths, p)
		}
		clear(pending)
		sort.Strings(paths)
		for _, p := range paths {
			if !l.emit(ctx, p) {
				return false
			}
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-fire:
			fire = nil
			if !flush() {
				return
			}
		case e, ok := <-l.w.Events:
			if !ok {
				return
			}
			if !l.accept(e) {
				continue
			}
			pending[e.Name] = struct{}{}
			if l.cfg.Debounce <= 0 {
				if !flush() {
					return
				}
				continue
			}
			if timer == nil {
				timer = time.NewTimer(l.cfg.Debounce)
			} else {
				timer.Reset(l.cfg.Debounce)
			}
			fire = timer.C
		case err, ok := <-l.w.Errors:
			if !ok {
				return
			}
			l.logger.Error("watcher error", "error", err)
			select {
			case l.errs <- err:
			default:
			}
		}
	}
}

// accept tracks new directories and reports whether e names a file to emit.
func (l *watchLoop) accept(e fsnotify.Event) bool {
	if !e.Has(fsnotify.Create) && !e.Has(fsnotify.Write) {
		return false
	}
	if l.cfg.SkipHidden && IsHidden(e.Name) {
		return false
	}
	if e.Has(fsnotify.Create) {
		if fi, err := os.Stat(e.Name); err == nil && fi.IsDir() {
			if err := l.w.Add(e.Name); err != nil {
				l.logger.Warn("failed to add new directory to watcher", "path", e.Name, "error", err)
			}
			return false
		}
	}
	return AllowedExt(filepath.Ext(e.Name), l.cfg.AllowedExts)
}

func (l *watchLoop) emit(ctx context.Context, path string) bool {
	select {
	case l.out <- path:
		return true
	case <-ctx.Done():
		return false
	}
}
