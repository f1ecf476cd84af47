package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// GuestOwner marks orders placed without a signed-in identity.
const GuestOwner = "guest"

type ShippingDetails struct {
	FullName     string `json:"fullName" validate:"required,min=2,max=50"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,max=20"`
	AddressLine1 string `json:"addressLine1" validate:"required,max=100"`
	AddressLine2 string `json:"addressLine2,omitempty" validate:"omitempty,max=100"`
	City         string `json:"city" validate:"required,max=60"`
	PostalCode   string `json:"postalCode" validate:"required,postcode"`
	Country      string `json:"country" validate:"required,min=2,max=56"`
}

// PaymentDetails are collected at checkout but never sent to a processor.
type PaymentDetails struct {
	CardholderName string `json:"cardholderName"`
	CardNumber     string `json:"cardNumber"`
	Expiry         string `json:"expiry"`
	CVC            string `json:"cvc"`
}

type Order struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Lines        []CartLine      `json:"items"`
	Total        decimal.Decimal `json:"total"`
	Shipping     ShippingDetails `json:"shipping"`
	PaymentLast4 string          `json:"paymentLast4,omitempty"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}
