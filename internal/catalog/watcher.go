package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FileKind identifies which catalog file changed.
type FileKind int

const (
	ClientsFile FileKind = iota
	ArticlesFile
)

// ChangeEvent reports that a watched catalog file was written or replaced.
type ChangeEvent struct {
	Kind FileKind
	Path string
	Time time.Time
}

// Watcher monitors catalog files for changes. Parent directories are
// watched rather than the files themselves so editors that save by rename
// are still noticed.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]FileKind
	debounce time.Duration
	errs     chan error
}

// NewWatcher watches the given clients and articles files. Empty paths are
// skipped.
func NewWatcher(clientsPath, articlesPath string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		files:    make(map[string]FileKind),
		debounce: 150 * time.Millisecond,
		errs:     make(chan error, 8),
	}

	dirs := make(map[string]bool)
	for path, kind := range map[string]FileKind{clientsPath: ClientsFile, articlesPath: ArticlesFile} {
		if path == "" {
			continue
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("resolve %s: %w", path, err)
		}
		w.files[abs] = kind
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch directory %s: %w", dir, err)
		}
	}

	return w, nil
}

// Errors exposes non-fatal watch errors. The channel drops errors when full.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Watch starts watching and returns a channel of change events. Rapid
// writes to the same file are coalesced into one event. The channel is
// closed when ctx is cancelled or the underlying watcher is closed.
func (w *Watcher) Watch(ctx context.Context) <-chan ChangeEvent {
	out := make(chan ChangeEvent, 8)

	go func() {
		defer close(out)

		pending := make(map[string]FileKind)

		timer := time.NewTimer(0)
		if !timer.Stop() {
			<-timer.C
		}

		flush := func() {
			for path, kind := range pending {
				select {
				case out <- ChangeEvent{Kind: kind, Path: path, Time: time.Now()}:
				case <-ctx.Done():
					return
				}
			}
			pending = make(map[string]FileKind)
		}

		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				abs, err := filepath.Abs(ev.Name)
				if err != nil {
					continue
				}
				kind, watched := w.files[abs]
				if !watched {
					continue
				}
				pending[abs] = kind
				timer.Reset(w.debounce)

			case <-timer.C:
				if len(pending) > 0 {
					flush()
				}

			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				select {
				case w.errs <- err:
				default:
				}
			}
		}
	}()

	return out
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
