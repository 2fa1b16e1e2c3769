package service

import (
	"sync"
	"time"

	"github.com/sangkips/shop-billing-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultSession is the cart used by clients that do not identify themselves.
// All such clients share it, as the single-counter deployment always did.
const DefaultSession = "default"

type cart struct {
	mu       sync.Mutex
	lines    []entity.CartLine
	lastSeen time.Time
	// evicted is set by sweep once the cart is no longer in the map.
	evicted bool
}

// CartService keeps one cart per session. Every cart operation runs under the
// cart's own mutex, so concurrent requests for one session are serialized and
// different sessions never see each other's lines.
type CartService struct {
	mu      sync.RWMutex
	carts   map[string]*cart
	idleTTL time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewCartService creates the session cart registry. Carts untouched for
// idleTTL are dropped by a background sweep; idleTTL <= 0 keeps them forever.
func NewCartService(idleTTL time.Duration) *CartService {
	s := &CartService{
		carts:   make(map[string]*cart),
		idleTTL: idleTTL,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	if idleTTL > 0 {
		go s.cleanupLoop()
	}

	return s
}

// Close stops the background sweep.
func (s *CartService) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// getCart returns the cart for session, creating it when create is set.
func (s *CartService) getCart(session string, create bool) *cart {
	if session == "" {
		session = DefaultSession
	}

	s.mu.RLock()
	c, exists := s.carts[session]
	s.mu.RUnlock()
	if exists || !create {
		return c
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double check after acquiring write lock
	if c, exists := s.carts[session]; exists {
		return c
	}
	c = &cart{lastSeen: s.now()}
	s.carts[session] = c
	return c
}

// lockCart returns the live cart for session with its mutex held. A cart
// evicted between lookup and locking is skipped and the lookup repeated.
func (s *CartService) lockCart(session string) *cart {
	for {
		c := s.getCart(session, true)
		c.mu.Lock()
		if !c.evicted {
			return c
		}
		c.mu.Unlock()
	}
}

// Add appends a line. Repeated products become separate lines.
func (s *CartService) Add(session string, line entity.CartLine) int {
	c := s.lockCart(session)
	defer c.mu.Unlock()

	c.lines = append(c.lines, line)
	c.lastSeen = s.now()
	return len(c.lines)
}

// Remove deletes the line at index and reports whether anything was removed.
// An index outside [0, len) leaves the cart untouched.
func (s *CartService) Remove(session string, index int) bool {
	c := s.getCart(session, false)
	if c == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSeen = s.now()
	if index < 0 || index >= len(c.lines) {
		return false
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return true
}

// Clear empties the cart.
func (s *CartService) Clear(session string) {
	c := s.getCart(session, false)
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	c.lastSeen = s.now()
}

// Snapshot returns a copy of the cart lines in insertion order.
func (s *CartService) Snapshot(session string) []entity.CartLine {
	c := s.getCart(session, false)
	if c == nil {
		return []entity.CartLine{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return copyLines(c.lines)
}

// Checkout hands a snapshot of the cart to fn while holding the cart lock and
// empties the cart if fn succeeds. Lines added concurrently wait for the
// checkout to finish instead of being lost.
func (s *CartService) Checkout(session string, fn func(lines []entity.CartLine) error) error {
	c := s.lockCart(session)
	defer c.mu.Unlock()

	c.lastSeen = s.now()
	if err := fn(copyLines(c.lines)); err != nil {
		return err
	}
	c.lines = nil
	return nil
}

// Totals previews the bill for the current cart using each line's own rate.
func (s *CartService) Totals(session string) entity.CartTotals {
	lines := s.Snapshot(session)

	totals := entity.CartTotals{
		Items:    len(lines),
		SubTotal: decimal.Zero,
		CGST:     decimal.Zero,
		SGST:     decimal.Zero,
	}
	for _, line := range lines {
		lineTotal := line.LineTotal()
		half := splitTax(lineTotal, line.GSTRate)
		totals.SubTotal = totals.SubTotal.Add(lineTotal)
		totals.CGST = totals.CGST.Add(half)
		totals.SGST = totals.SGST.Add(half)
	}
	totals.Total = totals.SubTotal.Add(totals.CGST).Add(totals.SGST)
	return totals
}

// Sessions returns the number of live carts.
func (s *CartService) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

// cleanupLoop periodically removes idle carts
func (s *CartService) cleanupLoop() {
	tick := s.idleTTL / 4
	if tick < time.Second {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

// sweep removes carts that have not been used within idleTTL
func (s *CartService) sweep() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for session, c := range s.carts {
		c.mu.Lock()
		if c.lastSeen.Before(cutoff) {
			c.evicted = true
			delete(s.carts, session)
			removed++
		}
		c.mu.Unlock()
	}
	return removed
}

func copyLines(lines []entity.CartLine) []entity.CartLine {
	out := make([]entity.CartLine, len(lines))
	copy(out, lines)
	return out
}
