// Package domain contains the cart pricing types. Cart input is client
// supplied and never trusted; every price is re-derived from the catalog.
package domain

import (
	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/hostline/hostline/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

// CartItem is one client-supplied cart line. It is the input to pricing and
// is never persisted as-is.
type CartItem struct {
	ProductType  catalogdomain.ProductType  `json:"product_type"`
	ProductID    string                     `json:"product_id"`
	BillingCycle catalogdomain.BillingCycle `json:"billing_cycle"`
	Quantity     int                        `json:"quantity"`
	DomainName   string                     `json:"domain_name,omitempty"`
	Action       catalogdomain.DomainAction `json:"action,omitempty"`
	Years        int                        `json:"years,omitempty"`
}

// PricedItem is a cart line with its price resolved from the current
// catalog state.
type PricedItem struct {
	ProductType  catalogdomain.ProductType  `json:"product_type"`
	ProductID    snowflake.ID               `json:"product_id"`
	Description  string                     `json:"description"`
	BillingCycle catalogdomain.BillingCycle `json:"billing_cycle"`
	Quantity     int                        `json:"quantity"`
	DomainName   string                     `json:"domain_name,omitempty"`
	Action       catalogdomain.DomainAction `json:"action,omitempty"`
	Years        int                        `json:"years,omitempty"`
	UnitPrice    decimal.Decimal            `json:"unit_price"`
	SetupFee     decimal.Decimal            `json:"setup_fee"`
	LineTotal    decimal.Decimal            `json:"line_total"`
}

// Quote is the summary for a priced cart. Discount, tax and total are
// computed from the unrounded subtotal and rounded once.
type Quote struct {
	Items    []PricedItem    `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}
