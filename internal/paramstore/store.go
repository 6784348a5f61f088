// Package paramstore implements the hot-reloading parameter store (spec
// §4.1, component C1). It tolerates two on-disk JSON layouts, validates
// structural invariants, and atomically swaps an immutable parameter
// snapshot that the rest of the core reads without locking.
//
// Reload detection follows the teacher's market.Scanner polling loop
// (time.NewTicker on a configurable interval); an fsnotify watcher on the
// parameter file's directory additionally wakes the same check early, purely
// as a latency optimization — the poll tick remains the source of truth: an
// fsnotify event only runs the same mtime check sooner, and the poll alone
// still picks up every change when no event arrives.
package paramstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"binarycore/internal/params"
	"binarycore/pkg/types"
)

// Subscriber is invoked after a successful snapshot swap. A panic or error
// from a subscriber must never prevent further swaps (spec §4.1).
type Subscriber func(*params.Document)

// Store is the hot-reloading parameter store. Safe for concurrent use: the
// current snapshot is held behind an atomic.Pointer so readers never block
// on the reload goroutine.
type Store struct {
	path         string
	pollInterval time.Duration
	logger       *slog.Logger

	current atomic.Pointer[params.Document]

	mu          sync.Mutex
	subscribers []Subscriber
	lastModTime time.Time
	lastErr     string // last distinct parse/validation error, for "log once"
}

// New creates a parameter store serving an empty document until Start (or an
// explicit Reload) succeeds. path is the on-disk parameter file;
// pollInterval is how often its mtime is checked (default 3s per spec §4.1
// if the caller passes 0).
func New(path string, pollInterval time.Duration, logger *slog.Logger) *Store {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	s := &Store{
		path:         path,
		pollInterval: pollInterval,
		logger:       logger.With("component", "paramstore"),
	}
	s.current.Store(params.Empty())
	return s
}

// GetParams returns the full current immutable snapshot.
func (s *Store) GetParams() *params.Document {
	return s.current.Load()
}

// GetMarketParams returns the parameters for one market key from the
// current snapshot.
func (s *Store) GetMarketParams(key types.MarketKey) params.MarketParams {
	return s.current.Load().Get(key)
}

// Subscribe registers a callback invoked after every successful reload.
func (s *Store) Subscribe(cb Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, cb)
}

// Start loads the file once synchronously before anything else (so, if the
// file is present and valid, real parameters are served before the first
// poll tick), then runs the poll+fsnotify reload loop. It blocks until ctx
// is cancelled.
func (s *Store) Start(ctx context.Context) {
	s.reloadIfChanged()

	watcher, err := fsnotify.NewWatcher()
	var events <-chan fsnotify.Event
	if err != nil {
		s.logger.Warn("fsnotify watcher unavailable, falling back to poll-only reload", "error", err)
	} else {
		dir := filepath.Dir(s.path)
		if werr := watcher.Add(dir); werr != nil {
			s.logger.Warn("fsnotify watch failed, falling back to poll-only reload", "error", werr, "dir", dir)
			watcher.Close()
			watcher = nil
		} else {
			events = watcher.Events
			defer watcher.Close()
		}
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reloadIfChanged()
		case evt, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(evt.Name) == filepath.Clean(s.path) {
				s.reloadIfChanged()
			}
		}
	}
}

// reloadIfChanged implements the hot-reload protocol: poll mtime, and only
// parse+validate+swap when it has strictly increased. On any parse or
// validation failure the previous snapshot remains active (spec §4.1/§7).
func (s *Store) reloadIfChanged() {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logDistinctError("parameter file absent: " + s.path)
			return
		}
		s.logDistinctError("stat parameter file: " + err.Error())
		return
	}

	s.mu.Lock()
	changed := info.ModTime().After(s.lastModTime)
	s.mu.Unlock()
	if !changed {
		return
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logDistinctError("read parameter file: " + err.Error())
		return
	}

	doc, err := parseDocument(data)
	if err != nil {
		s.logDistinctError(err.Error())
		return
	}

	s.mu.Lock()
	s.lastModTime = info.ModTime()
	s.lastErr = ""
	s.mu.Unlock()

	s.current.Store(doc)
	s.notifySubscribers(doc)
}

// notifySubscribers invokes every subscriber, recovering from panics so one
// misbehaving subscriber cannot block future reloads.
func (s *Store) notifySubscribers(doc *params.Document) {
	s.mu.Lock()
	subs := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()

	for _, cb := range subs {
		s.invokeSubscriber(cb, doc)
	}
}

func (s *Store) invokeSubscriber(cb Subscriber, doc *params.Document) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("paramstore subscriber panicked", "recover", r)
		}
	}()
	cb(doc)
}

// logDistinctError logs a configuration error once per distinct message
// (spec §7: "surfaced as a single log line per distinct error").
func (s *Store) logDistinctError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastErr == msg {
		return
	}
	s.lastErr = msg
	s.logger.Error("parameter reload failed, keeping previous snapshot", "error", msg)
}
