package server

import (
	"fmt"
	"net/http"
	"testing"

	coupondomain "github.com/hostline/hostline/internal/coupon/domain"
	gatewaydomain "github.com/hostline/hostline/internal/gateway/domain"
	orderdomain "github.com/hostline/hostline/internal/order/domain"
	pricingdomain "github.com/hostline/hostline/internal/pricing/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorStatusCodes(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{pricingdomain.ErrEmptyCart, http.StatusBadRequest},
		{pricingdomain.ErrInvalidProductID, http.StatusBadRequest},
		{pricingdomain.ErrCycleNotOffered, http.StatusBadRequest},
		{&pricingdomain.YearsOutOfRangeError{Years: 15, MinYears: 1, MaxYears: 10}, http.StatusBadRequest},
		{coupondomain.ErrCouponInvalid, http.StatusBadRequest},
		{coupondomain.ErrCouponPerUserLimit, http.StatusBadRequest},
		{&coupondomain.MinimumNotMetError{Minimum: decimal.NewFromInt(50)}, http.StatusBadRequest},
		{coupondomain.ErrCouponExhausted, http.StatusConflict},
		{orderdomain.ErrOrderNotPending, http.StatusConflict},
		{orderdomain.ErrOrderNotCompleted, http.StatusConflict},
		{orderdomain.ErrPaymentNotVerified, http.StatusConflict},
		{orderdomain.ErrOrderNotFound, http.StatusNotFound},
		{orderdomain.ErrMissingIdempotencyKey, http.StatusBadRequest},
		{orderdomain.ErrInvalidPaymentMethod, http.StatusBadRequest},
		{gatewaydomain.ErrGatewayUnavailable, http.StatusBadGateway},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
		{nil, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		status, _ := mapError(tc.err)
		assert.Equal(t, tc.status, status, "error %v", tc.err)
	}
}

func TestMapErrorWrappedGatewayError(t *testing.T) {
	err := fmt.Errorf("%w: create order returned 503", gatewaydomain.ErrGatewayUnavailable)
	status, payload := mapError(err)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "gateway_error", payload.Type)
}

func TestMapErrorMinimumNotMetPayload(t *testing.T) {
	_, payload := mapError(&coupondomain.MinimumNotMetError{Minimum: decimal.NewFromInt(50)})
	assert.Equal(t, "coupon_minimum_not_met", payload.Type)
	assert.Contains(t, payload.Message, "50.00")
}

func TestMapErrorValidationFields(t *testing.T) {
	_, payload := mapError(orderdomain.ErrMissingIdempotencyKey)
	assert.Equal(t, "validation_error", payload.Type)
	assert.Len(t, payload.Errors, 1)
	assert.Equal(t, "idempotency_key", payload.Errors[0].Field)

	_, payload = mapError(coupondomain.ErrCouponInvalid)
	assert.Equal(t, "coupon_code", payload.Errors[0].Field)
}
