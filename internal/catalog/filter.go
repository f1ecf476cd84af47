package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// PricePreset names a fixed price range that replaces explicit bounds.
type PricePreset string

const (
	PresetNone    PricePreset = "none"
	PresetUnder30 PricePreset = "under30"
	Preset30To50  PricePreset = "30to50"
	Preset50Plus  PricePreset = "50plus"
)

type SortOrder string

const (
	SortNone      SortOrder = "none"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortNameAsc   SortOrder = "name_asc"
	SortNameDesc  SortOrder = "name_desc"
)

// Filter is the shopper's browse state. Zero values disable each step.
type Filter struct {
	Category string
	Search   string
	// MinPrice and MaxPrice are raw user input; anything that is not a
	// number means no bound.
	MinPrice      string
	MaxPrice      string
	Preset        PricePreset
	Tags          []string
	FavoritesOnly bool
	Sort          SortOrder
}

// ParseFilter reads a Filter from query parameters. Unknown presets and sort
// orders fall back to none; tags may repeat or be comma separated.
func ParseFilter(q url.Values) Filter {
	f := Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   q.Get("q"),
		MinPrice: q.Get("min"),
		MaxPrice: q.Get("max"),
		Preset:   PresetNone,
		Sort:     SortNone,
	}
	switch p := PricePreset(q.Get("preset")); p {
	case PresetUnder30, Preset30To50, Preset50Plus:
		f.Preset = p
	}
	switch s := SortOrder(q.Get("sort")); s {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		f.Sort = s
	}
	for _, raw := range q["tags"] {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				f.Tags = append(f.Tags, t)
			}
		}
	}
	f.FavoritesOnly, _ = strconv.ParseBool(q.Get("favorites"))
	return f
}

type priceBounds struct {
	min, max *decimal.Decimal
}

func (b priceBounds) contains(price decimal.Decimal) bool {
	if b.min != nil && price.LessThan(*b.min) {
		return false
	}
	if b.max != nil && price.GreaterThan(*b.max) {
		return false
	}
	return true
}

func (b priceBounds) empty() bool {
	return b.min == nil && b.max == nil
}

// bounds resolves the effective range. An active preset ignores MinPrice and MaxPrice.
func (f Filter) bounds() priceBounds {
	thirty, fifty := decimal.NewFromInt(30), decimal.NewFromInt(50)
	switch f.Preset {
	case PresetUnder30:
		return priceBounds{max: &thirty}
	case Preset30To50:
		return priceBounds{min: &thirty, max: &fifty}
	case Preset50Plus:
		return priceBounds{min: &fifty}
	}
	return priceBounds{min: parseBound(f.MinPrice), max: parseBound(f.MaxPrice)}
}

func parseBound(raw string) *decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}
