package catalog

import (
	"crypto/sha256"
	"math/rand/v2"
	"sync"

	"valentine-storefront/internal/domain"
)

// Shuffler keeps one random order per distinct product id sequence. Edits to
// a product keep its position; adding, removing or reordering ids reshuffles.
type Shuffler struct {
	mu          sync.Mutex
	rng         *rand.Rand
	fingerprint [sha256.Size]byte
	perm        []int
	primed      bool
}

// NewShuffler uses rng when non-nil, a randomly seeded source otherwise.
func NewShuffler(rng *rand.Rand) *Shuffler {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Shuffler{rng: rng}
}

// Shuffle returns a new slice holding products in the memoized random order.
func (s *Shuffler) Shuffle(products []domain.Product) []domain.Product {
	fp := Fingerprint(products)

	s.mu.Lock()
	if !s.primed || fp != s.fingerprint || len(s.perm) != len(products) {
		s.perm = s.permutation(len(products))
		s.fingerprint, s.primed = fp, true
	}
	perm := s.perm
	s.mu.Unlock()

	out := make([]domain.Product, len(products))
	for i, src := range perm {
		out[i] = products[src]
	}
	return out
}

// permutation is a Fisher–Yates shuffle of 0..n-1.
func (s *Shuffler) permutation(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// Fingerprint hashes the ordered product ids.
func Fingerprint(products []domain.Product) [sha256.Size]byte {
	h := sha256.New()
	for _, p := range products {
		h.Write([]byte(p.ID.String()))
		h.Write([]byte{0})
	}
	var out [sha256.Size]byte
	copy(out[:], h.Sum(nil))
	return out
}
