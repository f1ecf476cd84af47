package domain

import "github.com/shopspring/decimal"

// CartScope is the storage key a cart is persisted under.
type CartScope string

// GuestScope is shared by every visitor who is not signed in.
const GuestScope CartScope = "cart_guest"

// ScopeFor returns the cart scope for an identity; nil means guest.
func ScopeFor(id *Identity) CartScope {
	if id == nil || id.UID == "" {
		return GuestScope
	}
	return CartScope("cart_" + id.UID)
}

// CartLine is keyed by (ProductID, Note).
type CartLine struct {
	ProductID ProductID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
	Note      string          `json:"customization"`
}

func (l CartLine) Matches(id ProductID, note string) bool {
	return l.ProductID == id && l.Note == note
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
