// Package order turns a cart into a placed order.
package order

import (
	"context"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/metrics"
	"valentine-storefront/internal/notify"
	orderrepo "valentine-storefront/internal/repository/order"
	"valentine-storefront/internal/service/cart"
	"valentine-storefront/internal/session"
	"valentine-storefront/internal/validation"
)

type Service struct {
	repo      orderrepo.Repository
	publisher notify.Publisher
	metrics   *metrics.Metrics
	validate  *validator.Validate
	logger    zerolog.Logger
}

func New(repo orderrepo.Repository, publisher notify.Publisher, m *metrics.Metrics, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Service{repo: repo, publisher: publisher, metrics: m, validate: validation.New(), logger: logger}
}

// Checkout writes the order, then clears the cart, then announces it. The
// steps are independent: a failed clear or announcement is logged and the
// order is still returned.
func (s *Service) Checkout(ctx context.Context, sess session.Session, c *cart.Store, shipping domain.ShippingDetails, payment domain.PaymentDetails) (*domain.Order, error) {
	view := c.View()
	if len(view.Lines) == 0 {
		return nil, domain.ErrEmptyCart
	}
	shipping = trimShipping(shipping)
	if err := validation.Struct(s.validate, shipping); err != nil {
		return nil, err
	}

	placed, err := s.repo.Create(ctx, domain.Order{
		UserID:       sess.Owner(),
		Lines:        view.Lines,
		Total:        view.Total,
		Shipping:     shipping,
		PaymentLast4: lastFour(payment.CardNumber),
		Status:       domain.OrderPending,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.OrderPlaced()

	log := s.logger.With().Str("order_id", placed.ID).Str("user_id", placed.UserID).Logger()
	if err := c.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("order placed but cart not cleared")
	}
	err = s.publisher.Publish(ctx, notify.Event{
		Type: notify.TypeOrderPlaced,
		Key:  placed.ID,
		Payload: map[string]any{
			"orderId": placed.ID,
			"userId":  placed.UserID,
			"email":   placed.Shipping.Email,
			"total":   placed.Total.StringFixed(2),
			"items":   len(placed.Lines),
		},
	})
	if err != nil {
		log.Warn().Err(err).Msg("order placed notification not sent")
	}
	log.Info().Str("total", placed.Total.StringFixed(2)).Msg("order placed")
	return placed, nil
}

// ListForUser returns uid's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, uid string) ([]domain.Order, error) {
	if uid == "" {
		return nil, domain.ErrAuthRequired
	}
	return s.repo.ListByUser(ctx, uid)
}

func trimShipping(d domain.ShippingDetails) domain.ShippingDetails {
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	d.Phone = strings.TrimSpace(d.Phone)
	d.AddressLine1 = strings.TrimSpace(d.AddressLine1)
	d.AddressLine2 = strings.TrimSpace(d.AddressLine2)
	d.City = strings.TrimSpace(d.City)
	d.PostalCode = strings.TrimSpace(d.PostalCode)
	d.Country = strings.TrimSpace(d.Country)
	return d
}

// lastFour keeps the last four digits of a card number; the rest is dropped.
func lastFour(number string) string {
	digits := make([]rune, 0, len(number))
	for _, r := range number {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}
