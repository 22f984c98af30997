package registry

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"

	"serbod/pkg/types"
)

// WatchCleanupFunc stops a watch and releases its resources.
type WatchCleanupFunc func() error

// debounceWindow coalesces bursts of filesystem events (template installs
// touch many paths) into a single rescan.
const debounceWindow = 100 * time.Millisecond

// Watch emits a fresh version snapshot whenever the templates directory
// changes. The channel carries the latest snapshot only; slow consumers skip
// intermediate states. The initial scan is delivered before Watch returns.
// Call the cleanup func to stop watching; the channel is closed afterwards.
func Watch(ctx context.Context, dir, jarName string) (<-chan []types.Version, WatchCleanupFunc, error) {
	initial, err := LoadDir(dir, jarName)
	if err != nil {
		return nil, nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, nil, err
	}

	ch := make(chan []types.Version, 1)
	ch <- initial

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
		close(ch)
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	sctx.Go(func(sctx *stopper.Context) error {
		var (
			debounce *time.Timer
			fire     <-chan time.Time
		)
		sctx.Defer(func() {
			if debounce != nil {
				debounce.Stop()
			}
		})
		for {
			select {
			case <-sctx.Stopping():
				return nil

			case _, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if debounce == nil {
					debounce = time.NewTimer(debounceWindow)
					fire = debounce.C
				} else {
					if !debounce.Stop() {
						select {
						case <-debounce.C:
						default:
						}
					}
					debounce.Reset(debounceWindow)
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return nil
				}

			case <-fire:
				fire = nil
				debounce = nil
				versions, err := LoadDir(dir, jarName)
				if err != nil {
					// directory may be mid-rename; the next event rescans
					continue
				}
				// replace any unconsumed snapshot with the latest
				select {
				case <-ch:
				default:
				}
				select {
				case ch <- versions:
				default:
				}
			}
		}
	})

	return ch, cleanup, nil
}
