package storage

import (
	"sync"
)

const tabQueueSize = 256

// MemoryStore is process-local storage shared by any number of tabs. A write
// through one tab is delivered as an Event to the watchers of every other tab,
// the way a browser fires storage events in sibling windows.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string]string
	tabs   map[int]*MemoryTab
	nextID int
}

// NewMemoryStore creates an empty shared store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]string),
		tabs: make(map[int]*MemoryTab),
	}
}

// Tab opens a new handle on the store.
func (s *MemoryStore) Tab() *MemoryTab {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	tab := &MemoryTab{
		store:    s,
		id:       s.nextID,
		handlers: make(map[int]func(Event)),
		queue:    make(chan Event, tabQueueSize),
		done:     make(chan struct{}),
	}
	s.tabs[tab.id] = tab
	go tab.run()
	return tab
}

func (s *MemoryStore) write(origin int, key string, value string, remove bool) {
	s.mu.Lock()
	old, existed := s.data[key]
	if remove {
		delete(s.data, key)
	} else {
		s.data[key] = value
	}
	if !existed {
		old = ""
	}
	var targets []*MemoryTab
	for id, tab := range s.tabs {
		if id != origin {
			targets = append(targets, tab)
		}
	}
	s.mu.Unlock()

	if remove && !existed {
		return
	}
	if !remove && existed && old == value {
		return
	}
	ev := Event{Key: key, OldValue: old}
	if !remove {
		ev.NewValue = value
	}
	for _, tab := range targets {
		tab.enqueue(ev)
	}
}

// MemoryTab is one handle on a MemoryStore. It implements Backend and Watcher.
type MemoryTab struct {
	store *MemoryStore
	id    int

	mu       sync.Mutex
	handlers map[int]func(Event)
	nextH    int

	queue     chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func (t *MemoryTab) Get(key string) (string, bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	v, ok := t.store.data[key]
	return v, ok, nil
}

func (t *MemoryTab) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	t.store.write(t.id, key, value, false)
	return nil
}

func (t *MemoryTab) Remove(key string) error {
	t.store.write(t.id, key, "", true)
	return nil
}

// Watch registers handler for writes made through other tabs.
func (t *MemoryTab) Watch(handler func(Event)) func() {
	t.mu.Lock()
	t.nextH++
	id := t.nextH
	t.handlers[id] = handler
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.handlers, id)
		t.mu.Unlock()
	}
}

// Close detaches the tab from the store and stops event delivery.
func (t *MemoryTab) Close() {
	t.closeOnce.Do(func() {
		t.store.mu.Lock()
		delete(t.store.tabs, t.id)
		t.store.mu.Unlock()
		close(t.done)
	})
}

func (t *MemoryTab) enqueue(ev Event) {
	select {
	case t.queue <- ev:
	case <-t.done:
	}
}

func (t *MemoryTab) run() {
	for {
		select {
		case <-t.done:
			return
		case ev := <-t.queue:
			t.mu.Lock()
			handlers := make([]func(Event), 0, len(t.handlers))
			for _, h := range t.handlers {
				handlers = append(handlers, h)
			}
			t.mu.Unlock()
			for _, h := range handlers {
				h(ev)
			}
		}
	}
}
