// Package cart holds the customer's locally accumulated order lines.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"momskitchen/internal/models"
)

var (
	ErrOrderLimitExceeded = errors.New("order limit exceeded")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
)

// LimitError reports that an addition would exceed a menu's remaining orders
type LimitError struct {
	Remaining int
	Available int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("You can only order up to %d items. Currently %d available.", e.Remaining, e.Available)
}

func (e *LimitError) Unwrap() error { return ErrOrderLimitExceeded }

// Persister stores cart lines durably
type Persister interface {
	Load(ctx context.Context) ([]models.CartLine, error)
	Save(ctx context.Context, lines []models.CartLine) error
}

// Listener is called with a copy of the lines after every change
type Listener func([]models.CartLine)

// Store is the cart. Mutations apply to memory synchronously; a background writer
// persists the latest state, skipping intermediate versions. Nothing is written
// until Load has completed, so an empty cart never overwrites a saved one.
type Store struct {
	mu      sync.RWMutex
	lines   []models.CartLine
	loaded  bool
	version uint64

	subMu     sync.Mutex
	listeners map[int]Listener
	nextSubID int

	repo Persister
	log  logrus.FieldLogger

	dirty     chan struct{}
	flushReq  chan chan struct{}
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	savedVersion uint64 // owned by the writer goroutine
}

// NewStore creates an empty cart and starts its writer. Call Close when done.
func NewStore(repo Persister, log logrus.FieldLogger) *Store {
	s := &Store{
		repo:      repo,
		log:       log.WithField("component", "cart"),
		listeners: make(map[int]Listener),
		dirty:     make(chan struct{}, 1),
		flushReq:  make(chan chan struct{}),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// Load replaces the in-memory cart with the persisted one and enables saving.
// A read failure is logged and leaves the cart empty.
func (s *Store) Load(ctx context.Context) {
	lines, err := s.repo.Load(ctx)
	if err != nil {
		s.log.WithError(err).Warn("Failed to load persisted cart, starting empty")
		lines = nil
	}

	s.mu.Lock()
	s.lines = sanitize(lines)
	s.loaded = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
}

// Loaded reports whether Load has completed
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Add puts quantity of line into the cart, adding to an existing line with the same id
func (s *Store) Add(line models.CartLine, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	s.mutate(func(lines []models.CartLine) []models.CartLine {
		for i := range lines {
			if lines[i].ID == line.ID {
				lines[i].Quantity += quantity
				return lines
			}
		}
		line.Quantity = quantity
		return append(lines, line)
	})
	return nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line
func (s *Store) UpdateQuantity(id string, quantity int) {
	if quantity <= 0 {
		s.Remove(id)
		return
	}
	s.mutate(func(lines []models.CartLine) []models.CartLine {
		for i := range lines {
			if lines[i].ID == id {
				lines[i].Quantity = quantity
			}
		}
		return lines
	})
}

func (s *Store) Remove(id string) {
	s.mutate(func(lines []models.CartLine) []models.CartLine {
		out := lines[:0]
		for _, l := range lines {
			if l.ID != id {
				out = append(out, l)
			}
		}
		return out
	})
}

func (s *Store) Clear() {
	s.mutate(func([]models.CartLine) []models.CartLine { return nil })
}

// Items returns a copy of the lines in insertion order
func (s *Store) Items() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// Count is the total number of items across lines
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Quantity returns the quantity held for id
func (s *Store) Quantity(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.lines {
		if l.ID == id {
			return l.Quantity
		}
	}
	return 0
}

// Total sums price times quantity over all lines
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(ParsePrice(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// CheckLimit reports whether quantity more of id fits within remaining orders.
// The check is advisory; the backend has the final say.
func (s *Store) CheckLimit(id string, quantity, remaining int) error {
	current := s.Quantity(id)
	if current+quantity > remaining {
		return &LimitError{Remaining: remaining, Available: remaining - current}
	}
	return nil
}

// Subscribe registers fn for change notifications and returns a function that removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.listeners, id)
			s.subMu.Unlock()
		})
	}
}

// Flush blocks until the current state has been handed to the persister
func (s *Store) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case s.flushReq <- ack:
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close writes any pending state and stops the writer
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.quit) })
	<-s.done
}

func (s *Store) mutate(fn func([]models.CartLine) []models.CartLine) {
	s.mu.Lock()
	s.lines = fn(s.lines)
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	select {
	case s.dirty <- struct{}{}:
	default:
	}
	s.notify(snap)
}

func (s *Store) snapshotLocked() []models.CartLine {
	return append([]models.CartLine{}, s.lines...)
}

func (s *Store) notify(snap []models.CartLine) {
	s.subMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.subMu.Unlock()

	for _, fn := range listeners {
		fn(append([]models.CartLine{}, snap...))
	}
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case <-s.dirty:
			s.persist()
		case ack := <-s.flushReq:
			s.persist()
			close(ack)
		case <-s.quit:
			s.persist()
			return
		}
	}
}

func (s *Store) persist() {
	s.mu.RLock()
	if !s.loaded || s.version == s.savedVersion {
		s.mu.RUnlock()
		return
	}
	snap := s.snapshotLocked()
	version := s.version
	s.mu.RUnlock()

	if err := s.repo.Save(context.Background(), snap); err != nil {
		s.log.WithError(err).WithField("cart_lines", len(snap)).Warn("Failed to persist cart")
		return
	}
	s.savedVersion = version
}

// sanitize drops lines a corrupt record could carry: duplicates and non-positive quantities
func sanitize(lines []models.CartLine) []models.CartLine {
	seen := make(map[string]bool, len(lines))
	out := make([]models.CartLine, 0, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		out = append(out, l)
	}
	return out
}

// ParsePrice reads the number out of a display price such as "₹120" or "INR 120.50".
// Everything but digits and the decimal point is ignored; unparseable prices count as zero.
func ParsePrice(price string) decimal.Decimal {
	var b strings.Builder
	dot := false
	for _, r := range price {
		if r == '.' {
			// "1.2.3" reads as 1.2
			if dot {
				break
			}
			dot = true
			b.WriteRune(r)
		} else if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}

	num := strings.TrimSuffix(b.String(), ".")
	if strings.HasPrefix(num, ".") {
		num = "0" + num
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero
	}
	return d
}
