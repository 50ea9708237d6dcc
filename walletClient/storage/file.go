package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	fileSuffix     = ".json"
	tmpSuffix      = ".tmp"
	dirPermissions = 0o750
	filePermission = 0o600
)

// FileBackend keeps each key in <dir>/<key>.json. Several processes may share
// the directory; Watch reports writes that did not come from this backend.
type FileBackend struct {
	dir    string
	logger zerolog.Logger

	mu    sync.Mutex
	known map[string]string // last value written or observed per key

	watchMu  sync.Mutex
	watcher  *fsnotify.Watcher
	handlers map[int]func(Event)
	nextH    int
	done     chan struct{}
}

// NewFileBackend creates dir if needed and returns a backend rooted there.
func NewFileBackend(dir string, logger zerolog.Logger) (*FileBackend, error) {
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to create storage directory %s", dir)
	}
	b := &FileBackend{
		dir:      dir,
		logger:   logger.With().Str("component", "file_storage").Logger(),
		known:    make(map[string]string),
		handlers: make(map[int]func(Event)),
	}
	if err := b.primeKnown(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+fileSuffix)
}

func (b *FileBackend) Get(key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read %s", key)
	}
	return string(data), true, nil
}

// Set writes via a temp file then rename so readers never see partial JSON.
func (b *FileBackend) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	target := b.path(key)
	tmp := target + tmpSuffix
	if err := os.WriteFile(tmp, []byte(value), filePermission); err != nil {
		return errors.Wrapf(err, "failed to write %s", key)
	}
	b.known[key] = value
	if err := os.Rename(tmp, target); err != nil {
		return errors.Wrapf(err, "failed to replace %s", key)
	}
	return nil
}

func (b *FileBackend) Remove(key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.known, key)
	if err := os.Remove(b.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "failed to remove %s", key)
	}
	return nil
}

// Watch starts watching the directory on first use and registers handler.
func (b *FileBackend) Watch(handler func(Event)) func() {
	b.watchMu.Lock()
	defer b.watchMu.Unlock()

	if b.watcher == nil {
		if err := b.startWatcher(); err != nil {
			b.logger.Error().Err(err).Msg("failed to watch storage directory, cross-process updates disabled")
			return func() {}
		}
	}

	b.nextH++
	id := b.nextH
	b.handlers[id] = handler
	return func() {
		b.watchMu.Lock()
		delete(b.handlers, id)
		b.watchMu.Unlock()
	}
}

// Close stops the directory watcher.
func (b *FileBackend) Close() error {
	b.watchMu.Lock()
	defer b.watchMu.Unlock()
	if b.watcher == nil {
		return nil
	}
	close(b.done)
	err := b.watcher.Close()
	b.watcher = nil
	return err
}

func (b *FileBackend) primeKnown() error {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return errors.Wrapf(err, "failed to list %s", b.dir)
	}
	for _, entry := range entries {
		key, ok := keyFromFile(entry.Name())
		if !ok || entry.IsDir() {
			continue
		}
		if value, exists, err := b.Get(key); err == nil && exists {
			b.known[key] = value
		}
	}
	return nil
}

func (b *FileBackend) startWatcher() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := w.Add(b.dir); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "failed to watch %s", b.dir)
	}
	b.watcher = w
	b.done = make(chan struct{})
	go b.loop(w, b.done)
	return nil
}

func (b *FileBackend) loop(w *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			key, ok := keyFromFile(filepath.Base(ev.Name))
			if !ok {
				continue
			}
			b.observe(key)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			b.logger.Warn().Err(err).Msg("storage watcher error")
		}
	}
}

// observe compares the on-disk value with the last known one and emits an
// Event when they differ. The read happens under mu, the same lock Set and
// Remove hold across their write and known update, so this backend's own
// writes are never echoed back.
func (b *FileBackend) observe(key string) {
	b.mu.Lock()
	current, _, err := b.Get(key)
	if err != nil {
		b.mu.Unlock()
		b.logger.Warn().Err(err).Str("key", key).Msg("failed to read changed storage key")
		return
	}
	old := b.known[key]
	if old == current {
		b.mu.Unlock()
		return
	}
	if current == "" {
		delete(b.known, key)
	} else {
		b.known[key] = current
	}
	b.mu.Unlock()

	b.watchMu.Lock()
	handlers := make([]func(Event), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.watchMu.Unlock()

	ev := Event{Key: key, OldValue: old, NewValue: current}
	for _, h := range handlers {
		h(ev)
	}
}

func keyFromFile(name string) (string, bool) {
	if !strings.HasSuffix(name, fileSuffix) {
		return "", false
	}
	return strings.TrimSuffix(name, fileSuffix), true
}
