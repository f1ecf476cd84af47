// Package cart holds the shopper's line items for the active identity scope.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/repository/cartstore"
)

// Store is bound to one scope at a time. Every mutation writes the full line
// list back to the scope's key before it becomes visible.
type Store struct {
	repo   cartstore.Repository
	logger zerolog.Logger

	mu       sync.Mutex
	identity *domain.Identity
	scope    domain.CartScope
	loaded   bool
	lines    []domain.CartLine
}

// View is a read-only copy of the cart with its derived values.
type View struct {
	Scope domain.CartScope  `json:"scope"`
	Lines []domain.CartLine `json:"lines"`
	Count int               `json:"count"`
	Total decimal.Decimal   `json:"total"`
}

func NewStore(repo cartstore.Repository, logger zerolog.Logger) *Store {
	return &Store{repo: repo, logger: logger}
}

// Open returns a store already loaded for id (nil for guests).
func Open(ctx context.Context, repo cartstore.Repository, id *domain.Identity, logger zerolog.Logger) *Store {
	s := NewStore(repo, logger)
	s.SetIdentity(ctx, id)
	return s
}

// SetIdentity switches scope and reloads. Carts are never merged across
// scopes. A missing or unreadable cart loads as empty.
func (s *Store) SetIdentity(ctx context.Context, id *domain.Identity) {
	scope := domain.ScopeFor(id)
	lines := s.load(ctx, scope)

	s.mu.Lock()
	defer s.mu.Unlock()
	if id != nil {
		cp := *id
		s.identity = &cp
	} else {
		s.identity = nil
	}
	s.scope = scope
	s.lines = lines
	s.loaded = true
}

func (s *Store) load(ctx context.Context, scope domain.CartScope) []domain.CartLine {
	raw, err := s.repo.Load(ctx, scope)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error().Err(err).Str("scope", string(scope)).Msg("cart: load failed, starting empty")
		}
		return []domain.CartLine{}
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Warn().Err(err).Str("scope", string(scope)).Msg("cart: stored cart unreadable, starting empty")
		return []domain.CartLine{}
	}
	valid := lines[:0]
	for _, l := range lines {
		if l.Quantity >= 1 && !l.ProductID.IsZero() {
			valid = append(valid, l)
		}
	}
	return valid
}

// Add merges into the line with the same product and note, or appends a new
// line. Guests are refused with domain.ErrAuthRequired. qty below 1 adds one.
func (s *Store) Add(ctx context.Context, p domain.Product, qty int, note string) error {
	if qty < 1 {
		qty = 1
	}
	return s.mutate(ctx, true, func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		for i := range lines {
			if lines[i].Matches(p.ID, note) {
				lines[i].Quantity += qty
				return lines, true
			}
		}
		return append(lines, domain.CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Image:     p.Image,
			Quantity:  qty,
			Note:      note,
		}), true
	})
}

// Remove drops the line matching id and note. A missing line is not an error.
func (s *Store) Remove(ctx context.Context, id domain.ProductID, note string) error {
	return s.mutate(ctx, false, func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		for i := range lines {
			if lines[i].Matches(id, note) {
				return append(lines[:i], lines[i+1:]...), true
			}
		}
		return lines, false
	})
}

// UpdateQuantity sets the line's quantity. qty below 1 leaves the line unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, id domain.ProductID, note string, qty int) error {
	if qty < 1 {
		return nil
	}
	return s.mutate(ctx, false, func(lines []domain.CartLine) ([]domain.CartLine, bool) {
		for i := range lines {
			if lines[i].Matches(id, note) {
				lines[i].Quantity = qty
				return lines, true
			}
		}
		return lines, false
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, false, func([]domain.CartLine) ([]domain.CartLine, bool) {
		return []domain.CartLine{}, true
	})
}

// mutate applies fn to a copy and commits it only after it was persisted.
func (s *Store) mutate(ctx context.Context, needsIdentity bool, fn func([]domain.CartLine) ([]domain.CartLine, bool)) error {
	s.mu.Lock()
	loaded := s.loaded
	s.mu.Unlock()
	if !loaded {
		s.SetIdentity(ctx, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if needsIdentity && s.identity == nil {
		return domain.ErrAuthRequired
	}

	next, changed := fn(append([]domain.CartLine(nil), s.lines...))
	if !changed {
		return nil
	}
	if next == nil {
		next = []domain.CartLine{}
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.repo.Save(ctx, s.scope, raw); err != nil {
		return fmt.Errorf("save cart %s: %w", s.scope, err)
	}
	s.lines = next
	return nil
}

func (s *Store) Scope() domain.CartScope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

func (s *Store) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine{}, s.lines...)
}

// Count is the sum of line quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return count(s.lines)
}

// Total is the sum of price times quantity over all lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return total(s.lines)
}

func (s *Store) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Scope: s.scope,
		Lines: append([]domain.CartLine{}, s.lines...),
		Count: count(s.lines),
		Total: total(s.lines),
	}
}

func count(lines []domain.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func total(lines []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum
}
