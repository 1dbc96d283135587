package bloggen

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// rebuilder coalesces bursts of file-change notifications into single
// rebuild runs. Events within the delay window collapse into one trigger;
// triggers arriving while a rebuild runs are queued as a single pending run.
type rebuilder struct {
	mu      sync.Mutex
	timer   *time.Timer
	delay   time.Duration
	request chan struct{}
}

func newRebuilder(delay time.Duration) *rebuilder {
	return &rebuilder{
		delay:   delay,
		request: make(chan struct{}, 1),
	}
}

// Trigger schedules a rebuild after the debounce delay, restarting the
// window if another trigger arrives first.
func (r *rebuilder) Trigger() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, func() {
		select {
		case r.request <- struct{}{}:
		default:
		}
	})
}

// Run processes rebuild requests until ctx is done, calling fn for each
// coalesced run. Requests arriving while fn executes fold into one
// follow-up run.
func (r *rebuilder) Run(ctx context.Context, fn func()) {
	var mu sync.Mutex
	running := false
	pending := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.request:
			mu.Lock()
			if running {
				pending = true
				mu.Unlock()
				continue
			}
			running = true
			mu.Unlock()

			fn()

			mu.Lock()
			running = false
			if pending {
				pending = false
				mu.Unlock()
				select {
				case r.request <- struct{}{}:
				default:
				}
			} else {
				mu.Unlock()
			}
		}
	}
}

// watchDirs registers every directory under the given roots with the
// watcher. Hidden directories and missing roots are skipped.
func watchDirs(watcher *fsnotify.Watcher, roots ...string) error {
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if name := d.Name(); strings.HasPrefix(name, ".") && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
