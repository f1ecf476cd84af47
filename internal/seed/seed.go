package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"valentine-storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.ExternalProduct) (*domain.ExternalProduct, error)
}

type productSeed struct {
	ID          string
	Name        string
	Category    string
	Price       string
	Description string
	Tags        []string
	Quantity    *int
	Active      *bool
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// Products are the demo external products. The last one is inactive and
// never shown.
var Products = []productSeed{
	{
		ID:          "demo-locket",
		Name:        "Engraved Heart Locket",
		Category:    "Jewelry",
		Price:       "64.00",
		Description: "Sterling silver locket with room for two photos",
		Tags:        []string{"silver", "engraved", "keepsake"},
		Quantity:    intPtr(12),
	},
	{
		ID:          "demo-dozen",
		Name:        "Dozen Long-Stem Roses",
		Category:    "Flowers",
		Price:       "54.99",
		Description: "Twelve red roses hand-tied with satin ribbon",
		Tags:        []string{"roses", "red"},
		Quantity:    intPtr(40),
	},
	{
		ID:          "demo-truffles",
		Name:        "Champagne Truffle Heart",
		Category:    "Chocolates",
		Price:       "27.50",
		Description: "Sixteen dark chocolate truffles in a heart-shaped box",
		Tags:        []string{"dark", "truffles"},
		Quantity:    intPtr(0),
	},
	{
		ID:          "demo-picnic",
		Name:        "Sunset Picnic Hamper",
		Category:    "Date Night",
		Price:       "89.00",
		Description: "Wicker hamper with wine glasses, blanket and treats",
		Tags:        []string{"experience", "picnic"},
	},
	{
		ID:       "demo-retired",
		Name:     "Retired Musical Bear",
		Category: "Teddy Bears",
		Price:    "29.00",
		Tags:     []string{"plush"},
		Active:   boolPtr(false),
	},
}

// Apply writes the demo products. It is idempotent: fixed ids are replaced.
func Apply(ctx context.Context, repo ProductWriter, logger zerolog.Logger) error {
	for _, s := range Products {
		p := domain.ExternalProduct{
			ID:          s.ID,
			Name:        s.Name,
			Category:    s.Category,
			Price:       decimal.RequireFromString(s.Price),
			ImageURL:    "/images/demo/" + s.ID + ".jpg",
			Description: s.Description,
			Tags:        s.Tags,
			Quantity:    s.Quantity,
			Active:      s.Active,
		}
		if _, err := repo.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", s.ID, err)
		}
	}
	logger.Info().Int("products", len(Products)).Msg("seed products written")
	return nil
}
