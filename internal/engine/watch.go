package engine

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for further changes before running.
const DefaultDebounce = 150 * time.Millisecond

// WatchOptions configures Watch.
type WatchOptions struct {
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// OnReport is called after every run, including the initial one.
	OnReport func(*Report, error)
}

// Watch runs an initial batch and then regenerates changed files and the
// files deriving from them until ctx is cancelled. Batches run one at a time;
// changes seen during a batch are picked up by the next one. Files the engine
// writes itself settle after one extra unchanged run.
func (e *Engine) Watch(ctx context.Context, opts WatchOptions) error {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	notify := opts.OnReport
	if notify == nil {
		notify = func(*Report, error) {}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer func() { _ = watcher.Close() }()

	if err := e.watchDir(watcher, e.sourceDir); err != nil {
		return errors.Wrapf(err, "watching %s", e.sourceDir)
	}

	notify(e.Generate(ctx, Options{}))

	var (
		pending = make(map[string]bool)
		timer   = time.NewTimer(debounce)
		fire    <-chan time.Time
		running bool
		due     bool
		done    = make(chan struct{})
	)
	timer.Stop()
	defer timer.Stop()

	start := func() {
		if len(pending) == 0 {
			return
		}
		files := make([]string, 0, len(pending))
		for p := range pending {
			files = append(files, p)
		}
		pending = make(map[string]bool)
		sort.Strings(files)

		running = true
		go func() {
			defer func() { done <- struct{}{} }()
			e.regenerate(ctx, files, notify)
		}()
	}

	for {
		select {
		case <-ctx.Done():
			if running {
				<-done
			}
			return nil

		case <-fire:
			fire = nil
			if running {
				due = true
			} else {
				start()
			}

		case <-done:
			running = false
			if due {
				due = false
				start()
			}

		case event, ok := <-watcher.Events:
			if !ok {
				if running {
					<-done
				}
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if isDir(event.Name) {
					if err := e.watchDir(watcher, event.Name); err != nil {
						e.logger.Warn("cannot watch directory", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !e.isSource(event.Name) {
				continue
			}
			pending[event.Name] = true
			timer.Reset(debounce)
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				if running {
					<-done
				}
				return nil
			}
			e.logger.Error("watcher error", "error", err)
		}
	}
}

// regenerate runs one batch for changed files.
func (e *Engine) regenerate(ctx context.Context, files []string, notify func(*Report, error)) {
	if ctx.Err() != nil {
		return
	}
	// A removed file can leave derived classes anywhere without a base.
	opts := Options{Files: files, Downstream: true}
	for _, f := range files {
		if !exists(f) {
			opts = Options{}
			break
		}
	}
	e.logger.Info("sources changed", "files", len(files), "full", len(opts.Files) == 0)
	notify(e.Generate(ctx, opts))
}

// watchDir adds a directory and all non-excluded subdirectories to the watcher.
func (e *Engine) watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != e.sourceDir && e.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
