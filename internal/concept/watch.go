package concept

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a concept file whenever it changes on disk and hands the
// whole new document to its listeners.
type Watcher struct {
	path     string
	mu       sync.Mutex
	onChange []func(*Document, error)
}

// NewWatcher creates a Watcher for the concept file at path.
func NewWatcher(path string) *Watcher {
	return &Watcher{path: filepath.Clean(path)}
}

// OnChange registers a callback invoked after every reload attempt. A
// failed reload passes a nil document and the error, so the caller can
// keep its previous tree.
func (w *Watcher) OnChange(fn func(*Document, error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Watch starts a background goroutine watching the file's directory;
// editors that save by rename would otherwise drop a watch on the file
// itself. The goroutine exits when ctx is done or stop is called.
func (w *Watcher) Watch(ctx context.Context) (stop func(), err error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("concept watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("concept watcher add %s: %w", dir, err)
	}

	done := make(chan struct{})
	var once sync.Once
	go func() {
		defer fw.Close()
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != w.path {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					w.notify(Load(w.path))
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.notify(nil, fmt.Errorf("concept watcher: %w", err))
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the file and notifies listeners.
func (w *Watcher) Reload() (*Document, error) {
	doc, err := Load(w.path)
	w.notify(doc, err)
	return doc, err
}

func (w *Watcher) notify(doc *Document, err error) {
	w.mu.Lock()
	callbacks := make([]func(*Document, error), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(doc, err)
	}
}
