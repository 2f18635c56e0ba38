package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 500 * time.Millisecond

// InputWatcher reports batches of changed input files. Events are collected
// for one debounce interval and files whose content did not change are
// ignored.
type InputWatcher struct {
	pattern  string
	root     string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.Mutex
	hashes map[string]string

	changes chan []string
}

// NewInputWatcher creates a watcher for every file matching pattern. A
// pattern without glob metacharacters watches a single file.
func NewInputWatcher(pattern string, debounce time.Duration, logger *slog.Logger) (*InputWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	pattern = filepath.Clean(pattern)
	base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))

	return &InputWatcher{
		pattern:  pattern,
		root:     filepath.FromSlash(base),
		debounce: debounce,
		watcher:  fsw,
		logger:   logger.With(slog.String("component", "input_watcher")),
		pending:  make(map[string]fsnotify.Op),
		hashes:   make(map[string]string),
		changes:  make(chan []string, 1),
	}, nil
}

// Changes delivers the paths changed since the previous batch. A batch that
// arrives while the previous one is still unread is merged into a single
// pending notification.
func (w *InputWatcher) Changes() <-chan []string {
	return w.changes
}

// Start adds the watches and begins processing events in the background.
func (w *InputWatcher) Start(ctx context.Context) error {
	if err := w.addWatches(); err != nil {
		return err
	}
	w.seedHashes()

	go w.processEvents(ctx)

	w.logger.Info("input watcher started",
		slog.String("pattern", w.pattern),
		slog.String("root", w.root),
		slog.Duration("debounce", w.debounce))
	return nil
}

// Stop releases the underlying watches.
func (w *InputWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *InputWatcher) addWatches() error {
	recursive := strings.Contains(w.pattern, "**")
	return filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		base := d.Name()
		if path != w.root && strings.HasPrefix(base, ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory",
				slog.String("path", path),
				slog.String("error", err.Error()))
		}
		if !recursive && path != w.root {
			return filepath.SkipDir
		}
		return nil
	})
}

func (w *InputWatcher) seedHashes() {
	matches, err := doublestar.FilepathGlob(w.pattern)
	if err != nil {
		return
	}
	w.hashMu.Lock()
	defer w.hashMu.Unlock()
	for _, path := range matches {
		if sum, err := hashFile(path); err == nil {
			w.hashes[filepath.Clean(path)] = sum
		}
	}
}

func (w *InputWatcher) processEvents(ctx context.Context) {
	defer close(w.changes)
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watcher error", slog.String("error", err.Error()))

		case <-ticker.C:
			if changed := w.flushPending(); len(changed) > 0 {
				w.notify(changed)
			}
		}
	}
}

func (w *InputWatcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	if event.Has(fsnotify.Create) && strings.Contains(w.pattern, "**") {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.watcher.Add(path); err == nil {
				w.logger.Debug("watching new directory", slog.String("path", path))
			}
			return
		}
	}

	if ok, _ := doublestar.PathMatch(w.pattern, path); !ok {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("input change detected",
		slog.String("path", path),
		slog.String("op", event.Op.String()))
}

// flushPending returns the pending paths whose content actually changed.
func (w *InputWatcher) flushPending() []string {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return nil
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	w.hashMu.Lock()
	defer w.hashMu.Unlock()

	var changed []string
	for path := range toProcess {
		sum, err := hashFile(path)
		if err != nil {
			// removed or renamed away
			if _, had := w.hashes[path]; had {
				delete(w.hashes, path)
				changed = append(changed, path)
			}
			continue
		}
		if old, had := w.hashes[path]; had && old == sum {
			continue
		}
		w.hashes[path] = sum
		changed = append(changed, path)
	}
	sort.Strings(changed)
	return changed
}

func (w *InputWatcher) notify(changed []string) {
	select {
	case w.changes <- changed:
	default:
		w.logger.Debug("change notification already pending", slog.Int("files", len(changed)))
	}
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
