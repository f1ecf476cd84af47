// Package inbox handles product questions, contact messages and staff
// answers, and watches a shopper's thread for unread answers.
package inbox

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"valentine-storefront/internal/domain"
	"valentine-storefront/internal/notify"
	messagerepo "valentine-storefront/internal/repository/message"
	"valentine-storefront/internal/validation"
)

type Service struct {
	repo      messagerepo.Repository
	publisher notify.Publisher
	validate  *validator.Validate
	logger    zerolog.Logger
}

func New(repo messagerepo.Repository, publisher notify.Publisher, logger zerolog.Logger) *Service {
	if publisher == nil {
		publisher = notify.Nop{}
	}
	return &Service{repo: repo, publisher: publisher, validate: validation.New(), logger: logger}
}

type question struct {
	Question string `json:"question" validate:"required,max=1000"`
}

// ContactInput is a contact-form submission.
type ContactInput struct {
	Name    string `json:"name" validate:"required,min=2,max=50"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=2000"`
}

type answer struct {
	Answer string `json:"answer" validate:"required,max=2000"`
}

// Ask records a question about p from who.
func (s *Service) Ask(ctx context.Context, who *domain.Identity, p domain.Product, text string) (*domain.Message, error) {
	if who == nil {
		return nil, domain.ErrAuthRequired
	}
	q := question{Question: strings.TrimSpace(text)}
	if err := validation.Struct(s.validate, q); err != nil {
		return nil, err
	}
	m, err := s.repo.Add(ctx, domain.Message{
		UserID:      who.UID,
		ProductID:   p.ID.String(),
		ProductName: p.Name,
		Question:    q.Question,
		Name:        who.DisplayName,
		Email:       who.Email,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.TypeQuestionAsked, m)
	return m, nil
}

// Contact records a contact-form message. who may be nil.
func (s *Service) Contact(ctx context.Context, who *domain.Identity, in ContactInput) (*domain.Message, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	m := domain.Message{
		Question:         in.Message,
		IsContactMessage: true,
		Name:             in.Name,
		Email:            in.Email,
	}
	if who != nil {
		m.UserID = who.UID
	}
	stored, err := s.repo.Add(ctx, m)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, notify.TypeContactReceived, stored)
	return stored, nil
}

// Answer stores a staff reply; the owner sees it as unread.
func (s *Service) Answer(ctx context.Context, messageID, text string) (*domain.Message, error) {
	a := answer{Answer: strings.TrimSpace(text)}
	if err := validation.Struct(s.validate, a); err != nil {
		return nil, err
	}
	if err := s.repo.Answer(ctx, messageID, a.Answer); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, messageID)
}

// List returns uid's messages, newest first.
func (s *Service) List(ctx context.Context, uid string) ([]domain.Message, error) {
	if uid == "" {
		return nil, domain.ErrAuthRequired
	}
	return s.repo.ListByUser(ctx, uid)
}

// UnreadCount counts answered messages the owner has not acknowledged.
func UnreadCount(messages []domain.Message) int {
	n := 0
	for _, m := range messages {
		if m.Unread() {
			n++
		}
	}
	return n
}

func (s *Service) publish(ctx context.Context, eventType string, m *domain.Message) {
	err := s.publisher.Publish(ctx, notify.Event{Type: eventType, Key: m.ID, Payload: m})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn().Err(err).Str("message_id", m.ID).Str("event_type", eventType).Msg("inbox: notification not sent")
	}
}
