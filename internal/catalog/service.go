package catalog

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/metrics"
	"valentine-storefront/internal/repository/product"
)

// Service keeps the merged catalog current with the external product feed.
type Service struct {
	repo     product.Repository
	static   []domain.Product
	shuffler *Shuffler
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	mu     sync.RWMutex
	merged []domain.Product
	byID   map[domain.ProductID]domain.Product
	stop   docstore.Unsubscribe
}

// NewService serves the static catalog until Start delivers external products.
// repo may be nil, in which case only the static catalog is served.
func NewService(repo product.Repository, shuffler *Shuffler, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if shuffler == nil {
		shuffler = NewShuffler(nil)
	}
	s := &Service{
		repo:     repo,
		static:   Static(),
		shuffler: shuffler,
		metrics:  m,
		logger:   logger,
	}
	s.replace(nil)
	return s
}

// Start subscribes to the external products. The subscription ends on Close or when ctx ends.
func (s *Service) Start(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	stop, err := s.repo.Subscribe(ctx, s.replace, func(err error) {
		s.logger.Error().Err(err).Msg("catalog: external product feed stopped, serving last snapshot")
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.stop = stop
	s.mu.Unlock()
	return nil
}

func (s *Service) Close() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

func (s *Service) replace(external []domain.ExternalProduct) {
	merged := Merge(external, s.static)
	byID := make(map[domain.ProductID]domain.Product, len(merged))
	for _, p := range merged {
		if _, dup := byID[p.ID]; !dup {
			byID[p.ID] = p
		}
	}

	s.mu.Lock()
	s.merged = merged
	s.byID = byID
	s.mu.Unlock()

	s.metrics.SetCatalogSize(string(domain.OriginStatic), len(s.static))
	s.metrics.SetCatalogSize(string(domain.OriginExternal), len(merged)-len(s.static))
	s.logger.Debug().Int("products", len(merged)).Msg("catalog: merged")
}

// Products returns the merged catalog in browse order.
func (s *Service) Products() []domain.Product {
	s.mu.RLock()
	merged := s.merged
	s.mu.RUnlock()
	return s.shuffler.Shuffle(merged)
}

func (s *Service) Get(id domain.ProductID) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

// Browse runs the full pipeline and returns the requested page.
func (s *Service) Browse(f Filter, v Viewer, page int) Page {
	return Paginate(Apply(s.Products(), f, v), page)
}

// Categories returns CategoryAll, the built-in categories, then any other
// category used by an external product, sorted.
func (s *Service) Categories() []string {
	out := append([]string{domain.CategoryAll}, Categories()...)
	known := make(map[string]bool, len(out))
	for _, c := range out {
		known[c] = true
	}
	var extra []string
	s.mu.RLock()
	for _, p := range s.merged {
		if p.Category != "" && !known[p.Category] {
			known[p.Category] = true
			extra = append(extra, p.Category)
		}
	}
	s.mu.RUnlock()
	slices.Sort(extra)
	return append(out, extra...)
}

// Tags returns every tag in the catalog, sorted.
func (s *Service) Tags() []string {
	seen := map[string]bool{}
	var out []string
	s.mu.RLock()
	for _, p := range s.merged {
		for _, t := range p.Tags {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	s.mu.RUnlock()
	slices.Sort(out)
	return out
}
