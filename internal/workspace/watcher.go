package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/ShayCichocki/mdtasks/internal/logging"
)

// Change lists the Markdown files touched during one debounce window.
type Change struct {
	Paths []string
}

// Watcher reports on-disk changes to Markdown files below a root directory.
// It only notifies; reloading is up to the caller.
type Watcher struct {
	root     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer

	changes chan Change
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching root and every directory below it.
func NewWatcher(root string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     root,
		debounce: debounce,
		watcher:  fw,
		logger:   logging.For("watch"),
		pending:  make(map[string]struct{}),
		changes:  make(chan Change, 1),
		done:     make(chan struct{}),
	}

	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}

	go w.run()
	return w, nil
}

// Changes delivers debounced change notifications.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
	return err
}

// addTree registers dir and its subdirectories. fsnotify is not recursive.
func (w *Watcher) addTree(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("watch new directory", "path", event.Name, "err", err)
			}
			return
		}
	}

	if !strings.HasSuffix(event.Name, MarkdownExt) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[event.Name] = struct{}{}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.debounce, w.flush)
	} else {
		w.timer.Reset(w.debounce)
	}
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	select {
	case <-w.done:
	case w.changes <- Change{Paths: paths}:
	default:
		// A notification is already queued; the consumer reloads everything anyway.
		w.logger.Debug("change coalesced", "paths", len(paths))
	}
}
