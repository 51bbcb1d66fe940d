package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"bricsview/internal/logging"
)

const debounceWindow = 500 * time.Millisecond

// Watcher observes the library root and fires onChange after directory
// events settle.
type Watcher struct {
	root     string
	onChange func()
	logger   *slog.Logger

	fsw  *fsnotify.Watcher
	done chan struct{}
}

// New creates a watcher for root. onChange runs on the watcher goroutine and
// must not block.
func New(root string, onChange func(), logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", root, err)
	}
	return &Watcher{
		root:     root,
		onChange: onChange,
		logger:   logging.NewComponentLogger(logger, "watch"),
		fsw:      fsw,
		done:     make(chan struct{}),
	}, nil
}

// Start runs the event loop until the context is canceled or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		defer close(w.done)

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				w.logger.Debug("library event", logging.String("op", event.Op.String()), logging.String("name", event.Name))
				if timer == nil {
					timer = time.NewTimer(debounceWindow)
					fire = timer.C
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(debounceWindow)
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watch error",
					logging.String(logging.FieldEventType, "watch_failed"),
					logging.Error(err),
					logging.String(logging.FieldImpact, "library changes may only surface on the periodic refresh"))
			case <-fire:
				timer = nil
				fire = nil
				w.logger.Debug("library changed, refreshing")
				w.onChange()
			}
		}
	}()
}

// Close stops watching and waits for the event loop to exit.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
