package message

import (
	"context"

	"valentine-storefront/internal/docstore"
	"valentine-storefront/internal/domain"
)

// Collection holds product questions and contact-form messages.
const Collection = "messages"

type Repository interface {
	Add(ctx context.Context, m domain.Message) (*domain.Message, error)
	Get(ctx context.Context, id string) (*domain.Message, error)
	// Answer stores a reply and resets the read flag.
	Answer(ctx context.Context, id, answer string) error
	MarkRead(ctx context.Context, id string) error
	// ListByUser returns the user's messages, newest first.
	ListByUser(ctx context.Context, uid string) ([]domain.Message, error)
	SubscribeByUser(ctx context.Context, uid string, onChange func([]domain.Message), onError docstore.ErrorFunc) (docstore.Unsubscribe, error)
}
