package macd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher watches the process list file and journals changes to it. Changes
// are only reported; the running process table is never reloaded.
type Watcher struct {
	w    *fsnotify.Watcher
	j    Journaler
	dir  string
	file string
}

// TryWatch attempts to watch the given file asynchronously, but it will log
// into the journaler if, for some reason, it fails to watch the file. The
// watcher stops once the context is canceled.
func TryWatch(ctx context.Context, file string, j Journaler) *Watcher {
	w := newWatcher(file, j)

	go func() {
		if err := w.init(); err != nil {
			j.Write(&EventWarning{
				Component: "watcher",
				Error:     fmt.Sprintf("not watching process list because: %v", err),
			})
			return
		}

		w.watch(ctx)
	}()

	return w
}

// NewWatcher watches the given file and logs events into the journaler. The
// watcher is stopped once the given context is canceled.
func NewWatcher(ctx context.Context, file string, j Journaler) (*Watcher, error) {
	w := newWatcher(file, j)
	if err := w.init(); err != nil {
		return nil, err
	}

	go w.watch(ctx)
	return w, nil
}

func newWatcher(file string, j Journaler) *Watcher {
	file = filepath.Clean(file)

	return &Watcher{
		j:    j,
		dir:  filepath.Dir(file),
		file: file,
	}
}

func (w *Watcher) init() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}

	// Watch the directory rather than the file, since editors usually replace
	// the file instead of writing to it.
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return errors.Wrap(err, "failed to watch dir")
	}

	w.w = watcher
	return nil
}

func (w *Watcher) watch(ctx context.Context) {
	defer w.w.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}

			w.j.Write(&EventWarning{
				Component: "watcher",
				Error:     "inotify error: " + err.Error(),
			})

		case evt, ok := <-w.w.Events:
			if !ok {
				return
			}

			if ev := translateFsnotifyEvt(evt, w.file); ev != nil {
				w.j.Write(ev)
			}
		}
	}
}

// translateFsnotifyEvt translates an fsnotify event into an
// EventProcessListModify event. Nil is returned if the event is not about the
// given file.
func translateFsnotifyEvt(evt fsnotify.Event, file string) *EventProcessListModify {
	if filepath.Clean(evt.Name) != file {
		return nil
	}

	switch {
	case evt.Op&fsnotify.Write != 0:
		return &EventProcessListModify{Op: ProcessListUpdate, File: file}
	case evt.Op&fsnotify.Create != 0:
		return &EventProcessListModify{Op: ProcessListCreate, File: file}
	case evt.Op&fsnotify.Rename != 0:
		// Treat a rename as a remove; fsnotify does not report renames
		// properly, so it's apparently treated like a remove.
		// See: https://github.com/fsnotify/fsnotify/issues/26

		fallthrough
	case evt.Op&fsnotify.Remove != 0:
		return &EventProcessListModify{Op: ProcessListRemove, File: file}
	}

	return nil
}
