// Package catalog builds the storefront's product list and the filtered,
// sorted and paged views browsed by shoppers.
package catalog

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"valentine-storefront/internal/domain"
)

// SlotsPerCategory is the number of generated products in each category.
const SlotsPerCategory = 20

type keywordTag struct {
	keyword string
	tag     string
}

type category struct {
	name       string
	slug       string
	base       decimal.Decimal
	genericTag string
	adjectives []string
	nouns      []string
	keywords   []keywordTag
}

var categories = []category{
	{
		name: "Flowers", slug: "flowers", base: decimal.RequireFromString("24.99"), genericTag: "romantic",
		adjectives: []string{"Crimson", "Blush", "Velvet", "Classic", "Wild"},
		nouns:      []string{"Rose Bouquet", "Tulip Bunch", "Peony Box", "Lily Arrangement"},
		keywords: []keywordTag{
			{"rose", "roses"}, {"tulip", "tulips"}, {"peony", "peonies"}, {"lily", "lilies"},
			{"crimson", "red"}, {"blush", "pink"},
		},
	},
	{
		name: "Chocolates", slug: "chocolates", base: decimal.RequireFromString("12.50"), genericTag: "sweet",
		adjectives: []string{"Dark", "Milk", "Salted", "Hazelnut", "Ruby"},
		nouns:      []string{"Truffle Box", "Heart Bar", "Praline Tin", "Bonbon Set"},
		keywords: []keywordTag{
			{"dark", "dark-chocolate"}, {"truffle", "truffles"}, {"heart", "hearts"},
			{"hazelnut", "nuts"}, {"ruby", "pink"},
		},
	},
	{
		name: "Jewelry", slug: "jewelry", base: decimal.RequireFromString("39.00"), genericTag: "keepsake",
		adjectives: []string{"Silver", "Golden", "Rose Gold", "Pearl", "Crystal"},
		nouns:      []string{"Heart Necklace", "Charm Bracelet", "Stud Earrings", "Promise Ring"},
		keywords: []keywordTag{
			{"necklace", "necklaces"}, {"bracelet", "bracelets"}, {"earring", "earrings"},
			{"ring", "rings"}, {"heart", "hearts"}, {"gold", "gold"}, {"silver", "silver"},
		},
	},
	{
		name: "Teddy Bears", slug: "teddy-bears", base: decimal.RequireFromString("18.00"), genericTag: "cuddly",
		adjectives: []string{"Fluffy", "Giant", "Mini", "Heart-Hug", "Vintage"},
		nouns:      []string{"Teddy Bear", "Bunny Plush", "Panda Plush", "Puppy Plush"},
		keywords: []keywordTag{
			{"giant", "large"}, {"mini", "small"}, {"heart", "hearts"}, {"teddy", "bears"},
		},
	},
	{
		name: "Cards", slug: "cards", base: decimal.RequireFromString("4.99"), genericTag: "message",
		adjectives: []string{"Handwritten", "Pop-Up", "Funny", "Poetic", "Glitter"},
		nouns:      []string{"Love Card", "Heart Card", "Photo Card", "Anniversary Card"},
		keywords: []keywordTag{
			{"funny", "humor"}, {"pop-up", "3d"}, {"photo", "personalized"}, {"heart", "hearts"},
			{"anniversary", "anniversary"},
		},
	},
	{
		name: "Gift Baskets", slug: "gift-baskets", base: decimal.RequireFromString("45.00"), genericTag: "gift-set",
		adjectives: []string{"Spa", "Gourmet", "Wine Lover's", "Breakfast", "Movie Night"},
		nouns:      []string{"Basket", "Hamper", "Crate", "Box"},
		keywords: []keywordTag{
			{"spa", "relax"}, {"gourmet", "food"}, {"wine", "wine"}, {"breakfast", "food"},
			{"movie", "date-night"},
		},
	},
}

// Categories lists the category names in catalog order, without CategoryAll.
func Categories() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = c.name
	}
	return out
}

// Static generates the built-in catalog. The result is identical on every call.
func Static() []domain.Product {
	out := make([]domain.Product, 0, len(categories)*SlotsPerCategory)
	for c, cat := range categories {
		for i := 0; i < SlotsPerCategory; i++ {
			name := cat.adjectives[i%len(cat.adjectives)] + " " + cat.nouns[(i/len(cat.adjectives))%len(cat.nouns)]
			out = append(out, domain.Product{
				ID:          domain.StaticProductID(c*SlotsPerCategory + i + 1),
				Name:        name,
				Category:    cat.name,
				Price:       staticPrice(cat.base, c, i),
				Image:       fmt.Sprintf("/images/%s/%d.jpg", cat.slug, i%4+1),
				Description: fmt.Sprintf("%s from our %s collection.", name, strings.ToLower(cat.name)),
				Tags:        tagsFor(cat, name),
				Origin:      domain.OriginStatic,
			})
		}
	}
	return out
}

// staticPrice is base + (slot mod 10)*2 + categoryIndex*3, rounded to cents.
func staticPrice(base decimal.Decimal, categoryIndex, slot int) decimal.Decimal {
	return base.
		Add(decimal.NewFromInt(int64(slot%10) * 2)).
		Add(decimal.NewFromInt(int64(categoryIndex) * 3)).
		Round(2)
}

func tagsFor(cat category, name string) []string {
	lower := strings.ToLower(name)
	var tags []string
	seen := map[string]bool{}
	for _, kw := range cat.keywords {
		if strings.Contains(lower, kw.keyword) && !seen[kw.tag] {
			seen[kw.tag] = true
			tags = append(tags, kw.tag)
		}
	}
	if len(tags) == 0 {
		tags = []string{cat.genericTag}
	}
	return tags
}
