package game

import (
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// AreaWatcher watches the areas directory and collects changed area files
// so the tick loop can reimport them at a tick boundary. File events never
// mutate world state directly.
type AreaWatcher struct {
	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]bool
	done    chan struct{}
}

// WatchAreas starts watching the configured areas directory. The returned
// watcher is already wired to the world; call Close on shutdown.
func (w *World) WatchAreas(dir string) (*AreaWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	aw := &AreaWatcher{
		watcher: fw,
		pending: make(map[string]bool),
		done:    make(chan struct{}),
	}
	go aw.run()
	w.watcher = aw
	return aw, nil
}

func (aw *AreaWatcher) run() {
	for {
		select {
		case <-aw.done:
			return
		case event, ok := <-aw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".area") {
				continue
			}
			aw.mu.Lock()
			aw.pending[filepath.Clean(event.Name)] = true
			aw.mu.Unlock()
		case err, ok := <-aw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("area watcher: %v", err)
		}
	}
}

// TakePending returns and clears the set of changed area files.
func (aw *AreaWatcher) TakePending() []string {
	aw.mu.Lock()
	defer aw.mu.Unlock()
	if len(aw.pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(aw.pending))
	for path := range aw.pending {
		paths = append(paths, path)
	}
	aw.pending = make(map[string]bool)
	return paths
}

// Close stops the watcher goroutine.
func (aw *AreaWatcher) Close() error {
	close(aw.done)
	return aw.watcher.Close()
}
