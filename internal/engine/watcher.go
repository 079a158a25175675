package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cristal-orion/Reminor/internal/journal"
)

// Watcher reindexes entries when their journal files change on disk,
// so edits made outside the API converge without a manual rebuild.
// Events are debounced per path since editors fire several writes per
// save.
type Watcher struct {
	engine *Engine
	fsw    *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	done    chan struct{}
}

const debounceDelay = 500 * time.Millisecond

// NewWatcher starts watching every known owner's journal directory.
func NewWatcher(e *Engine, owners []string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		engine:  e,
		fsw:     fsw,
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}

	for _, owner := range owners {
		if err := w.AddOwner(owner); err != nil {
			e.log.Warn().Err(err).Str("owner", owner).Msg("watch journal dir")
		}
	}

	go w.loop()
	return w, nil
}

// AddOwner begins watching one owner's journal directory, creating it
// if needed.
func (w *Watcher) AddOwner(owner string) error {
	dir := w.engine.Journal.Dir(owner)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return w.fsw.Add(dir)
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, ".txt") {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.engine.log.Warn().Err(err).Msg("watcher error")
		case <-w.done:
			return
		}
	}
}

// schedule arms (or re-arms) the debounce timer for a path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(debounceDelay)
		return
	}
	w.pending[path] = time.AfterFunc(debounceDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.sync(path)
	})
}

// sync reconciles the index with one on-disk file: reindex if the file
// exists, drop its postings if it was deleted.
func (w *Watcher) sync(path string) {
	base := filepath.Base(path)
	date := strings.TrimSuffix(base, ".txt")
	if !journal.ValidDate(date) {
		return
	}
	owner := filepath.Base(filepath.Dir(filepath.Dir(path)))

	text, err := w.engine.Journal.Get(owner, date)
	if err != nil {
		if err := w.engine.DB.RemovePostings(owner, date); err != nil {
			w.engine.log.Warn().Err(err).Str("date", date).Msg("remove postings for deleted entry")
		}
		return
	}

	if err := w.engine.OnWrite(context.Background(), owner, date, text); err != nil {
		w.engine.log.Warn().Err(err).Str("owner", owner).Str("date", date).Msg("reindex changed entry")
		return
	}
	w.engine.log.Debug().Str("owner", owner).Str("date", date).Msg("reindexed changed entry")
}

// Close stops the watcher and cancels any pending debounce timers.
func (w *Watcher) Close() error {
	close(w.done)

	w.mu.Lock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	return w.fsw.Close()
}
