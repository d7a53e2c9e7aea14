// file: internal/watcher/watcher.go
// version: 3.1.0
// guid: b2c3d4e5-f6a7-8901-bcde-f23456789012

package watcher

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// htmlExtensions are the saved-page extensions we care about.
var htmlExtensions = map[string]bool{
	".html":  true,
	".htm":   true,
	".xhtml": true,
}

// DefaultDebounce is the default debounce period.
const DefaultDebounce = 2 * time.Second

// Callback is invoked after the debounce period with the changed page.
type Callback func(path string)

// Watcher monitors saved startlist pages and invokes a callback once writes
// to a page have settled.
//
// The parent directory is watched rather than the file itself, so pages
// saved by replacing the file (write to temp, rename over) keep triggering.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	target    string // single file, or "" when watching every page in dir
	dir       string
	debounce  time.Duration
	callback  Callback
	stop      chan struct{}
	stopped   chan struct{}
	mu        sync.Mutex
	fireMu    sync.Mutex // serializes callbacks; Stop waits on it
	timer     *time.Timer
	pending   map[string]bool
	running   bool
}

// New creates a Watcher. Pass 0 for debounce to use DefaultDebounce.
func New(callback Callback, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		debounce: debounce,
		callback: callback,
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
		pending:  make(map[string]bool),
	}
}

// Start begins watching path. A file is watched on its own; a directory
// has every HTML page directly inside it watched. Calling Start on a
// running watcher is a no-op.
func (w *Watcher) Start(path string) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("cannot watch %s: %w", path, err)
	}

	if info.IsDir() {
		w.dir = abs
	} else {
		w.dir = filepath.Dir(abs)
		w.target = abs
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("cannot watch %s: %w", w.dir, err)
	}
	w.fsWatcher = fsw

	w.mu.Lock()
	w.running = true
	w.mu.Unlock()

	go w.eventLoop()
	return nil
}

// Stop gracefully shuts down the watcher and waits for the event loop and
// any running callback to finish. It must not be called from the callback.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stop)
	if w.fsWatcher != nil {
		w.fsWatcher.Close()
	}
	<-w.stopped

	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()

	// wait for a callback that is already running
	w.fireMu.Lock()
	w.fireMu.Unlock()
}

func (w *Watcher) eventLoop() {
	defer close(w.stopped)

	for {
		select {
		case <-w.stop:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("[ERROR] watcher: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	name := filepath.Clean(event.Name)
	if w.target != "" {
		if name != w.target {
			return
		}
	} else if !IsHTMLFile(name) {
		return
	}

	w.schedule(name)
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = true
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}

	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.fireMu.Lock()
	defer w.fireMu.Unlock()

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.timer = nil
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	sort.Strings(paths)
	for _, p := range paths {
		// the page may have been replaced again and not yet recreated
		if _, err := os.Stat(p); err != nil {
			continue
		}
		log.Printf("[INFO] watcher: %s changed", p)
		if w.callback != nil {
			w.callback(p)
		}
	}
}

// IsHTMLFile reports whether name has a saved-page extension.
func IsHTMLFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return htmlExtensions[ext]
}
