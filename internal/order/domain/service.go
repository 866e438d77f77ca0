package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	gatewaydomain "github.com/hostline/hostline/internal/gateway/domain"
	pricingdomain "github.com/hostline/hostline/internal/pricing/domain"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest carries a checkout submission. Totals are never taken
// from the client; the cart is re-priced server-side.
type CreateOrderRequest struct {
	UserID         snowflake.ID
	Items          []pricingdomain.CartItem
	CouponCode     string
	PaymentMethod  string
	IdempotencyKey string
}

type CreateOrderResponse struct {
	OrderNumber   string                `json:"order_number"`
	InvoiceNumber string                `json:"invoice_number"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Discount      decimal.Decimal       `json:"discount"`
	Tax           decimal.Decimal       `json:"tax"`
	Total         decimal.Decimal       `json:"total"`
	Currency      string                `json:"currency"`
	Intent        *gatewaydomain.Intent `json:"intent,omitempty"`
}

type ConfirmPaymentRequest struct {
	OrderNumber      string
	UserID           snowflake.ID
	PaymentReference string
}

// Service is the order writer and payment confirmation state machine.
// Every multi-step write runs in a single transaction; partial orders,
// invoices or coupon increments are never observable.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (CreateOrderResponse, error)
	ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) error
	Cancel(ctx context.Context, orderNumber string, userID snowflake.ID) error
	Refund(ctx context.Context, orderNumber string, reason string) error
	GetByNumber(ctx context.Context, orderNumber string, userID snowflake.ID) (Order, error)
}

var (
	ErrOrderNotFound          = errors.New("order_not_found")
	ErrOrderNotPending        = errors.New("order_not_pending")
	ErrOrderNotCompleted      = errors.New("order_not_completed")
	ErrPaymentNotVerified     = errors.New("payment_not_verified")
	ErrMissingPaymentRef      = errors.New("missing_payment_reference")
	ErrMissingIdempotencyKey  = errors.New("missing_idempotency_key")
	ErrInvalidPaymentMethod   = errors.New("invalid_payment_method")
	ErrNumberRetriesExhausted = errors.New("order_number_retries_exhausted")
)
