// Package profile reads and edits the signed-in shopper's profile.
package profile

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
	profilerepo "valentine-storefront/internal/repository/profile"
	"valentine-storefront/internal/validation"
)

// Details are the fields a shopper may edit.
type Details struct {
	DisplayName  string `json:"displayName" validate:"required,min=2,max=50"`
	Phone        string `json:"phone" validate:"omitempty,max=20"`
	AddressLine1 string `json:"addressLine1" validate:"omitempty,max=100"`
	AddressLine2 string `json:"addressLine2" validate:"omitempty,max=100"`
	City         string `json:"city" validate:"omitempty,max=60"`
	PostalCode   string `json:"postalCode" validate:"omitempty,postcode"`
	Country      string `json:"country" validate:"omitempty,min=2,max=56"`
}

type Service struct {
	repo     profilerepo.Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

func New(repo profilerepo.Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, validate: validation.New(), logger: logger}
}

// Get returns who's profile. Without a stored document the identity's own
// fields are returned.
func (s *Service) Get(ctx context.Context, who *domain.Identity) (*domain.Profile, error) {
	if who == nil {
		return nil, domain.ErrAuthRequired
	}
	p, err := s.repo.Get(ctx, who.UID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.Profile{
				UID:         who.UID,
				Email:       who.Email,
				DisplayName: who.DisplayName,
				PhotoURL:    who.PhotoURL,
				Favorites:   []string{},
			}, nil
		}
		return nil, err
	}
	if p.Email == "" {
		p.Email = who.Email
	}
	if p.Favorites == nil {
		p.Favorites = []string{}
	}
	return p, nil
}

// Update validates every field first; a rejected submission writes nothing.
func (s *Service) Update(ctx context.Context, who *domain.Identity, d Details) (*domain.Profile, error) {
	if who == nil {
		return nil, domain.ErrAuthRequired
	}
	d = trim(d)
	if err := validation.Struct(s.validate, d); err != nil {
		return nil, err
	}
	err := s.repo.SaveDetails(ctx, domain.Profile{
		UID:          who.UID,
		DisplayName:  d.DisplayName,
		Phone:        d.Phone,
		AddressLine1: d.AddressLine1,
		AddressLine2: d.AddressLine2,
		City:         d.City,
		PostalCode:   d.PostalCode,
		Country:      d.Country,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("uid", who.UID).Msg("profile updated")
	return s.Get(ctx, who)
}

func trim(d Details) Details {
	d.DisplayName = strings.TrimSpace(d.DisplayName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.AddressLine1 = strings.TrimSpace(d.AddressLine1)
	d.AddressLine2 = strings.TrimSpace(d.AddressLine2)
	d.City = strings.TrimSpace(d.City)
	d.PostalCode = strings.TrimSpace(d.PostalCode)
	d.Country = strings.TrimSpace(d.Country)
	return d
}
