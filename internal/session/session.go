// Package session carries the caller's identity through a request. Handlers
// receive a Session explicitly; there is no process-wide current user.
package session

import (
	"context"

	"valentine-storefront/internal/domain"
)

type Session struct {
	token    string
	identity *domain.Identity
}

func Guest() Session {
	return Session{}
}

func New(token string, id domain.Identity) Session {
	return Session{token: token, identity: &id}
}

func (s Session) SignedIn() bool {
	return s.identity != nil
}

// Identity returns a copy of the signed-in identity, or nil for guests.
func (s Session) Identity() *domain.Identity {
	if s.identity == nil {
		return nil
	}
	cp := *s.identity
	return &cp
}

func (s Session) Token() string {
	return s.token
}

func (s Session) UID() string {
	if s.identity == nil {
		return ""
	}
	return s.identity.UID
}

// CartScope is where this session's cart is stored.
func (s Session) CartScope() domain.CartScope {
	return domain.ScopeFor(s.identity)
}

// Owner is the uid recorded on orders, or domain.GuestOwner.
func (s Session) Owner() string {
	if s.identity == nil {
		return domain.GuestOwner
	}
	return s.identity.UID
}

// Resolver maps a bearer token to an identity.
type Resolver interface {
	CurrentIdentity(ctx context.Context, token string) (*domain.Identity, error)
}

// Resolve builds the session for token. Missing or rejected tokens yield a
// guest session together with the resolver's error, if any.
func Resolve(ctx context.Context, r Resolver, token string) (Session, error) {
	if token == "" || r == nil {
		return Guest(), nil
	}
	id, err := r.CurrentIdentity(ctx, token)
	if err != nil {
		return Guest(), err
	}
	if id == nil {
		return Guest(), nil
	}
	return New(token, *id), nil
}
