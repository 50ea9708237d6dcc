package reconciler

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/pushchain/push-wallet-connect/walletClient/storage"
)

// Reconciler forwards relevant foreign storage writes to a re-derive
// callback. The callback must not write storage back, otherwise instances
// would echo each other forever.
type Reconciler struct {
	watcher  storage.Watcher
	logger   zerolog.Logger
	rederive func(Change)

	mu   sync.Mutex
	stop func()
}

// New returns a stopped reconciler.
func New(watcher storage.Watcher, logger zerolog.Logger, rederive func(Change)) *Reconciler {
	return &Reconciler{
		watcher:  watcher,
		logger:   logger.With().Str("component", "reconciler").Logger(),
		rederive: rederive,
	}
}

// Start subscribes to the watcher. It does nothing without a watcher or
// when already started.
func (r *Reconciler) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watcher == nil || r.stop != nil {
		return
	}
	r.stop = r.watcher.Watch(func(ev storage.Event) { r.Handle(ev) })
	r.logger.Debug().Msg("watching storage")
}

// Stop unsubscribes.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		r.stop()
		r.stop = nil
	}
}

// Handle processes one storage event and reports whether it triggered a
// re-derivation.
func (r *Reconciler) Handle(ev storage.Event) bool {
	fields, watched := ChangedFields(ev.Key, ev.OldValue, ev.NewValue)
	if !watched || len(fields) == 0 {
		return false
	}
	r.logger.Debug().Str("key", ev.Key).Strs("fields", fields).Msg("storage changed elsewhere")
	if r.rederive != nil {
		r.rederive(Change{Key: ev.Key, Fields: fields})
	}
	return true
}
