// Package domain defines the narrow payment gateway contract. The core
// stores only the opaque payment reference, never gateway secrets.
package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// IntentRequest asks the gateway to prepare a payment for an order total.
type IntentRequest struct {
	Amount   decimal.Decimal
	Currency string
	Metadata map[string]string
}

// Intent is the gateway's handle for a payment the client completes
// externally.
type Intent struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret,omitempty"`
	ApproveURL   string `json:"approve_url,omitempty"`
}

// Verification is the result of confirming a payment reference.
type Verification struct {
	Verified      bool
	TransactionID string
	Raw           []byte
}

// Adapter is implemented per provider.
type Adapter interface {
	Provider() string
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	Confirm(ctx context.Context, paymentReference string) (Verification, error)
}

var (
	ErrProviderNotFound   = errors.New("gateway_provider_not_found")
	ErrGatewayUnavailable = errors.New("gateway_unavailable")
)
