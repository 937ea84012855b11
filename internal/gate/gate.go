package gate

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"momskitchen/internal/models"
)

// KitchenClosedNotice is raised when a closing window empties the cart
const KitchenClosedNotice = "The kitchen has closed for now, so your cart has been cleared. Please order again during ordering hours."

// MissingWindowPolicy decides the gate state when the backend sends no windows
type MissingWindowPolicy int

const (
	// KeepState leaves the gate as it was
	KeepState MissingWindowPolicy = iota
	FailOpen
	FailClosed
)

// ParsePolicy maps "keep", "open" and "closed" to a policy; anything else is KeepState
func ParsePolicy(s string) MissingWindowPolicy {
	switch s {
	case "open":
		return FailOpen
	case "closed":
		return FailClosed
	default:
		return KeepState
	}
}

// CartClearer is the part of the cart the gate empties on closing
type CartClearer interface {
	IsEmpty() bool
	Clear()
}

// Notifier shows a user-visible notice
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) { f(message) }

// Options configure a Gate
type Options struct {
	// Name labels log lines, e.g. "ordering" or "cancellation"
	Name   string
	Policy MissingWindowPolicy
	// Cart is emptied when the gate closes; nil for gates that guard nothing held locally
	Cart     CartClearer
	Notifier Notifier
	Logger   logrus.FieldLogger
}

// Gate tracks whether an action is currently allowed. It starts closed and acts
// only on the open to closed edge, so staying closed never clears twice.
type Gate struct {
	mu   sync.Mutex
	open bool

	policy   MissingWindowPolicy
	cart     CartClearer
	notifier Notifier
	log      logrus.FieldLogger
}

func New(opts Options) *Gate {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gate{
		policy:   opts.Policy,
		cart:     opts.Cart,
		notifier: opts.Notifier,
		log:      log.WithField("gate", opts.Name),
	}
}

// Evaluate recomputes the gate for now and returns the new state
func (g *Gate) Evaluate(now time.Time, windows []models.OrderingWindow) bool {
	g.mu.Lock()
	prev := g.open
	next := prev
	if len(windows) == 0 {
		switch g.policy {
		case FailOpen:
			next = true
		case FailClosed:
			next = false
		}
	} else {
		next = IsWithinWindow(now, windows)
	}
	g.open = next
	g.mu.Unlock()

	if prev != next {
		g.log.WithFields(logrus.Fields{"open": next, "at": FormatHHMM(now)}).Info("Gate changed state")
	}
	if prev && !next {
		g.closed()
	}
	return next
}

// Open reports the state from the last evaluation
func (g *Gate) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

func (g *Gate) closed() {
	if g.cart == nil || g.cart.IsEmpty() {
		return
	}
	g.cart.Clear()
	g.log.Info("Cart cleared because the ordering window closed")
	if g.notifier != nil {
		g.notifier.Notify(KitchenClosedNotice)
	}
}
