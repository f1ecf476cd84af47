package domain

import (
	"sort"
	"time"
)

// Profile is the user document kept in the "users" collection.
type Profile struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName,omitempty"`
	PhotoURL     string    `json:"photoURL,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	AddressLine1 string    `json:"addressLine1,omitempty"`
	AddressLine2 string    `json:"addressLine2,omitempty"`
	City         string    `json:"city,omitempty"`
	PostalCode   string    `json:"postalCode,omitempty"`
	Country      string    `json:"country,omitempty"`
	Favorites    []string  `json:"favorites"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FavoriteSet is a set of product ids.
type FavoriteSet map[ProductID]struct{}

// NewFavoriteSet parses stored ids, skipping anything malformed.
func NewFavoriteSet(raw []string) FavoriteSet {
	set := make(FavoriteSet, len(raw))
	for _, r := range raw {
		id, err := ParseProductID(r)
		if err != nil {
			continue
		}
		set[id] = struct{}{}
	}
	return set
}

func (s FavoriteSet) Has(id ProductID) bool {
	_, ok := s[id]
	return ok
}

// Toggle flips membership and reports whether id is now a favorite.
func (s FavoriteSet) Toggle(id ProductID) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s FavoriteSet) Clone() FavoriteSet {
	out := make(FavoriteSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Strings returns the ids sorted for stable output.
func (s FavoriteSet) Strings() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id.String())
	}
	sort.Strings(out)
	return out
}
