package catalog

import (
	"strings"

	"valentine-storefront/internal/domain"
)

// Merge returns the active external products followed by the static ones.
// Duplicates are kept; origin-qualified ids keep the two sources apart.
func Merge(external []domain.ExternalProduct, static []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(external)+len(static))
	for _, e := range external {
		if !e.IsActive() {
			continue
		}
		out = append(out, FromExternal(e))
	}
	return append(out, static...)
}

func FromExternal(e domain.ExternalProduct) domain.Product {
	tags := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return domain.Product{
		ID:          domain.ExternalProductID(e.ID),
		Name:        e.Name,
		Category:    e.Category,
		Price:       e.Price,
		Image:       e.ImageURL,
		Description: e.Description,
		Tags:        tags,
		Origin:      domain.OriginExternal,
		Quantity:    e.Quantity,
	}
}
