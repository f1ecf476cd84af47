package domain

import "time"

// Message is a product question or contact-form entry with an optional answer.
type Message struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId,omitempty"`
	ProductID        string     `json:"productId,omitempty"`
	ProductName      string     `json:"productName,omitempty"`
	Question         string     `json:"question"`
	Answer           string     `json:"answer,omitempty"`
	UserHasRead      bool       `json:"userHasRead"`
	IsContactMessage bool       `json:"isContactMessage,omitempty"`
	Name             string     `json:"name,omitempty"`
	Email            string     `json:"email,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	AnsweredAt       *time.Time `json:"answeredAt,omitempty"`
}

// Unread is true for answered messages the owner has not acknowledged.
func (m Message) Unread() bool {
	return m.Answer != "" && !m.UserHasRead
}
