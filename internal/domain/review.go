package domain

import "time"

type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	OrderID   string    `json:"orderId,omitempty"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReviewSnippet struct {
	Author  string `json:"author"`
	Message string `json:"message"`
}

// ReviewSummary holds the review count and up to two newest snippets.
type ReviewSummary struct {
	ProductID string          `json:"productId"`
	Count     int             `json:"count"`
	Latest    []ReviewSnippet `json:"latest"`
}
