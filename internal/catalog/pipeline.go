package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"valentine-storefront/internal/domain"
)

// Viewer is who is browsing. Favorites are only consulted when SignedIn.
type Viewer struct {
	SignedIn  bool
	Favorites domain.FavoriteSet
}

// Apply filters and sorts products, which are expected in browse order
// already. The input is never modified.
func Apply(products []domain.Product, f Filter, v Viewer) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	keep := predicates(f, v)
	for _, p := range products {
		if matchesAll(p, keep) {
			out = append(out, p)
		}
	}
	sortProducts(out, f.Sort)
	return out
}

type predicate func(domain.Product) bool

func predicates(f Filter, v Viewer) []predicate {
	var keep []predicate

	if f.Category != "" && f.Category != domain.CategoryAll {
		category := f.Category
		keep = append(keep, func(p domain.Product) bool { return p.Category == category })
	}
	if needle := strings.ToLower(strings.TrimSpace(f.Search)); needle != "" {
		keep = append(keep, func(p domain.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), needle)
		})
	}
	if b := f.bounds(); !b.empty() {
		keep = append(keep, func(p domain.Product) bool { return b.contains(p.Price) })
	}
	if len(f.Tags) > 0 {
		tags := make(map[string]struct{}, len(f.Tags))
		for _, t := range f.Tags {
			tags[t] = struct{}{}
		}
		keep = append(keep, func(p domain.Product) bool { return p.HasAnyTag(tags) })
	}
	if f.FavoritesOnly && v.SignedIn {
		favs := v.Favorites
		keep = append(keep, func(p domain.Product) bool { return favs.Has(p.ID) })
	}
	return keep
}

func matchesAll(p domain.Product, keep []predicate) bool {
	for _, k := range keep {
		if !k(p) {
			return false
		}
	}
	return true
}

func sortProducts(products []domain.Product, order SortOrder) {
	switch order {
	case SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int { return a.Price.Cmp(b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int { return b.Price.Cmp(a.Price) })
	case SortNameAsc, SortNameDesc:
		// Collators keep internal buffers and are not safe to share.
		c := collate.New(language.English)
		sign := 1
		if order == SortNameDesc {
			sign = -1
		}
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return sign * c.CompareString(a.Name, b.Name)
		})
	}
}
