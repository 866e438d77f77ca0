// Package offline is the development gateway: every intent succeeds and
// every reference verifies. Never enable it in production.
package offline

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hostline/hostline/internal/gateway/domain"
)

type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Provider() string { return "offline" }

func (a *Adapter) CreateIntent(ctx context.Context, req domain.IntentRequest) (domain.Intent, error) {
	return domain.Intent{
		IntentID: fmt.Sprintf("off_%s", uuid.NewString()),
	}, nil
}

func (a *Adapter) Confirm(ctx context.Context, paymentReference string) (domain.Verification, error) {
	ref := strings.TrimSpace(paymentReference)
	if ref == "" {
		return domain.Verification{}, domain.ErrGatewayUnavailable
	}
	return domain.Verification{
		Verified:      true,
		TransactionID: ref,
		Raw:           []byte(`{"provider":"offline","verified":true}`),
	}, nil
}
