// Package wallets is the registry of wallet integrations the client knows
// how to target directly, plus the side channel used to nudge them.
package wallets

import (
	"sync"

	"github.com/rs/zerolog"
)

// Messaging is how requests reach a wallet.
type Messaging string

const (
	MessagingWalletConnect Messaging = "walletconnect"
	MessagingBrowser       Messaging = "browser"
)

// Side-channel event names understood by wallet apps.
const (
	EventWalletApp    = "walletAppEvent"
	EventResetTimeout = "resetTimeout"
)

// Wallet describes one known wallet integration.
type Wallet struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messaging Messaging `json:"messaging"`
	// HasEventAction marks wallets that want side-channel notifications
	// before requests and on timeout resets.
	HasEventAction bool `json:"hasEventAction"`
}

// Known is the built-in registry.
var Known = []Wallet{
	{ID: "figure_extension", Title: "Figure Wallet Extension", Messaging: MessagingBrowser, HasEventAction: true},
	{ID: "figure_mobile", Title: "Figure Mobile", Messaging: MessagingWalletConnect},
	{ID: "figure_mobile_test", Title: "Figure Mobile Test", Messaging: MessagingWalletConnect},
	{ID: "figure_web", Title: "Figure Web", Messaging: MessagingWalletConnect, HasEventAction: true},
	{ID: "figure_web_test", Title: "Figure Web Test", Messaging: MessagingWalletConnect, HasEventAction: true},
	{ID: "figure_hosted", Title: "Figure Hosted", Messaging: MessagingWalletConnect, HasEventAction: true},
	{ID: "figure_hosted_test", Title: "Figure Hosted Test", Messaging: MessagingWalletConnect, HasEventAction: true},
}

// Lookup returns the known wallet with the given id.
func Lookup(id string) (Wallet, bool) {
	if id == "" {
		return Wallet{}, false
	}
	for _, w := range Known {
		if w.ID == id {
			return w, true
		}
	}
	return Wallet{}, false
}

// Event is a side-channel notification for a wallet app.
type Event struct {
	Event    string `json:"event"`
	CustomID string `json:"customId,omitempty"`
	// Timeout is the new connection timeout in milliseconds, set on resetTimeout.
	Timeout int64  `json:"timeout,omitempty"`
	Method  string `json:"method,omitempty"`
}

// Notifier delivers side-channel events to wallet apps.
type Notifier interface {
	Notify(walletID string, ev Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(walletID string, ev Event)

func (f NotifierFunc) Notify(walletID string, ev Event) { f(walletID, ev) }

// Notify sends ev through n if walletID names a known wallet with an event
// action. It reports whether anything was sent.
func Notify(n Notifier, walletID string, ev Event) bool {
	if n == nil {
		return false
	}
	w, ok := Lookup(walletID)
	if !ok || !w.HasEventAction {
		return false
	}
	n.Notify(w.ID, ev)
	return true
}

// LogNotifier records events in the log. It is the default when no wallet
// side channel is wired.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "wallet_notifier").Logger()}
}

func (n *LogNotifier) Notify(walletID string, ev Event) {
	n.logger.Debug().
		Str("wallet_id", walletID).
		Str("event", ev.Event).
		Str("custom_id", ev.CustomID).
		Int64("timeout_ms", ev.Timeout).
		Msg("wallet app event")
}

// Recorder keeps every event it receives. Useful for embedding hosts that
// poll, and in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

// Recorded is one event seen by a Recorder.
type Recorded struct {
	WalletID string
	Event    Event
}

func (r *Recorder) Notify(walletID string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{WalletID: walletID, Event: ev})
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}
