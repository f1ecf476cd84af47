package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Origin tells which catalog source a product came from.
type Origin string

const (
	OriginStatic   Origin = "static"
	OriginExternal Origin = "external"
)

// CategoryAll is the category selector that disables category filtering.
const CategoryAll = "All"

// ProductID is qualified by origin so static and external ids never collide.
type ProductID struct {
	Origin Origin
	Key    string
}

func StaticProductID(n int) ProductID {
	return ProductID{Origin: OriginStatic, Key: strconv.Itoa(n)}
}

func ExternalProductID(key string) ProductID {
	return ProductID{Origin: OriginExternal, Key: key}
}

// ParseProductID accepts the "origin:key" form produced by String.
func ParseProductID(raw string) (ProductID, error) {
	origin, key, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || key == "" {
		return ProductID{}, fmt.Errorf("invalid product id %q", raw)
	}
	switch Origin(origin) {
	case OriginStatic:
		if _, err := strconv.Atoi(key); err != nil {
			return ProductID{}, fmt.Errorf("invalid static product id %q", raw)
		}
	case OriginExternal:
	default:
		return ProductID{}, fmt.Errorf("unknown product origin in %q", raw)
	}
	return ProductID{Origin: Origin(origin), Key: key}, nil
}

func (id ProductID) String() string {
	if id.IsZero() {
		return ""
	}
	return string(id.Origin) + ":" + id.Key
}

func (id ProductID) IsZero() bool {
	return id.Origin == "" && id.Key == ""
}

func (id ProductID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ProductID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ProductID{}
		return nil
	}
	parsed, err := ParseProductID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Product is the common shape both catalog sources are mapped to.
type Product struct {
	ID          ProductID       `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags"`
	Origin      Origin          `json:"origin"`
	// Quantity is only set for external products; nil means unknown stock.
	Quantity *int `json:"quantity,omitempty"`
}

// HasAnyTag reports whether the product carries any of the given tags.
func (p Product) HasAnyTag(tags map[string]struct{}) bool {
	for _, t := range p.Tags {
		if _, ok := tags[t]; ok {
			return true
		}
	}
	return false
}

// ExternalProduct is a product record as kept in the document store.
type ExternalProduct struct {
	ID          string          `json:"-"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	Active      *bool           `json:"active,omitempty"`
	Quantity    *int            `json:"quantity,omitempty"`
}

// IsActive treats a missing flag as active.
func (p ExternalProduct) IsActive() bool {
	return p.Active == nil || *p.Active
}
