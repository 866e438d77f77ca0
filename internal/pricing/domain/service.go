package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// QuoteRequest prices a cart and optionally applies a coupon.
type QuoteRequest struct {
	Items      []CartItem
	CouponCode string
	UserID     snowflake.ID
}

// Service resolves cart lines to concrete prices. It is a pure function
// over catalog snapshots: pricing the same cart twice against an unchanged
// catalog yields identical results, and nothing is written.
type Service interface {
	Price(ctx context.Context, items []CartItem) ([]PricedItem, error)
	Quote(ctx context.Context, req QuoteRequest) (Quote, error)
}

var (
	ErrEmptyCart           = errors.New("empty_cart")
	ErrInvalidProductID    = errors.New("invalid_product_id")
	ErrUnknownProductType  = errors.New("unknown_product_type")
	ErrInvalidBillingCycle = errors.New("invalid_billing_cycle")
	ErrInvalidQuantity     = errors.New("invalid_quantity")
	ErrInvalidDomainAction = errors.New("invalid_domain_action")
	ErrMissingDomainName   = errors.New("missing_domain_name")
	ErrCycleNotOffered     = errors.New("billing_cycle_not_offered")
)

// YearsOutOfRangeError rejects a domain registration term outside the TLD's
// allowed range instead of silently clamping it.
type YearsOutOfRangeError struct {
	Years    int
	MinYears int
	MaxYears int
}

func (e *YearsOutOfRangeError) Error() string {
	return fmt.Sprintf("years_out_of_range: %d not in [%d, %d]", e.Years, e.MinYears, e.MaxYears)
}
