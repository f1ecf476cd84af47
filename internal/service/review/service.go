// Package review stores product reviews and summarizes the live review stream.
package review

import (
	"context"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
	reviewrepo "valentine-storefront/internal/repository/review"
	"valentine-storefront/internal/validation"
)

const (
	// SnippetRunes is the longest review text shown in a summary.
	SnippetRunes = 100
	// LatestPerProduct is how many snippets a summary keeps.
	LatestPerProduct = 2
)

type Service struct {
	repo     reviewrepo.Repository
	validate *validator.Validate
	logger   zerolog.Logger
}

func New(repo reviewrepo.Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, validate: validation.New(), logger: logger}
}

type Input struct {
	ProductID string `json:"productId" validate:"required"`
	OrderID   string `json:"orderId" validate:"omitempty,max=64"`
	Rating    int    `json:"rating" validate:"gte=1,lte=5"`
	Message   string `json:"message" validate:"required,max=2000"`
}

// Add stores a review written by who.
func (s *Service) Add(ctx context.Context, who *domain.Identity, in Input) (*domain.Review, error) {
	if who == nil {
		return nil, domain.ErrAuthRequired
	}
	in.ProductID = strings.TrimSpace(in.ProductID)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	if _, err := domain.ParseProductID(in.ProductID); err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{"productId": "is invalid"}}
	}
	r, err := s.repo.Add(ctx, domain.Review{
		ProductID: in.ProductID,
		OrderID:   in.OrderID,
		UserID:    who.UID,
		UserName:  AuthorName(*who),
		Rating:    in.Rating,
		Message:   in.Message,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("review_id", r.ID).Str("product_id", r.ProductID).Int("rating", r.Rating).Msg("review added")
	return r, nil
}

// AuthorName is the display name, else the local part of the email.
func AuthorName(id domain.Identity) string {
	if name := strings.TrimSpace(id.DisplayName); name != "" {
		return name
	}
	local, _, _ := strings.Cut(id.Email, "@")
	if local == "" {
		return "Anonymous"
	}
	return local
}

// Summarize groups reviews by product, newest first, keeping the count and
// up to LatestPerProduct snippets for each.
func Summarize(reviews []domain.Review) map[string]domain.ReviewSummary {
	byProduct := make(map[string][]domain.Review)
	for _, r := range reviews {
		if r.ProductID == "" {
			continue
		}
		byProduct[r.ProductID] = append(byProduct[r.ProductID], r)
	}

	out := make(map[string]domain.ReviewSummary, len(byProduct))
	for pid, list := range byProduct {
		sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
		latest := make([]domain.ReviewSnippet, 0, LatestPerProduct)
		for _, r := range list[:min(len(list), LatestPerProduct)] {
			latest = append(latest, domain.ReviewSnippet{Author: r.UserName, Message: Snippet(r.Message)})
		}
		out[pid] = domain.ReviewSummary{ProductID: pid, Count: len(list), Latest: latest}
	}
	return out
}

// Snippet shortens text to SnippetRunes runes, marking the cut with an ellipsis.
func Snippet(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= SnippetRunes {
		return text
	}
	return strings.TrimSpace(string(runes[:SnippetRunes])) + "…"
}
