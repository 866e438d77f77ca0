package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/hostline/hostline/internal/catalog/domain"
	coupondomain "github.com/hostline/hostline/internal/coupon/domain"
	gatewaydomain "github.com/hostline/hostline/internal/gateway/domain"
	orderdomain "github.com/hostline/hostline/internal/order/domain"
	pricingdomain "github.com/hostline/hostline/internal/pricing/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal_error")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrRateLimited    = errors.New("rate_limited")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var yearsErr *pricingdomain.YearsOutOfRangeError
	if errors.As(err, &yearsErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   "years",
					Code:    "years_out_of_range",
					Message: yearsErr.Error(),
				},
			},
		}
	}

	var minErr *coupondomain.MinimumNotMetError
	if errors.As(err, &minErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "coupon_minimum_not_met",
			Message: minErr.Error(),
			Errors: []ValidationError{
				{
					Field:   "coupon_code",
					Code:    "coupon_minimum_not_met",
					Message: minErr.Error(),
				},
			},
		}
	}

	if isValidationError(err) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
			Errors: []ValidationError{
				{
					Field:   validationErrorField(err),
					Code:    err.Error(),
					Message: err.Error(),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, orderdomain.ErrOrderNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "order not found",
		}
	case errors.Is(err, coupondomain.ErrCouponExhausted),
		errors.Is(err, orderdomain.ErrOrderNotPending),
		errors.Is(err, orderdomain.ErrOrderNotCompleted),
		errors.Is(err, orderdomain.ErrPaymentNotVerified):
		// Retryable conflicts: a concurrent checkout or confirmation won
		// the race, or the gateway reports the payment incomplete.
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case errors.Is(err, gatewaydomain.ErrGatewayUnavailable):
		return http.StatusBadGateway, errorPayload{
			Type:    "gateway_error",
			Message: "payment gateway unavailable",
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pricingdomain.ErrEmptyCart),
		errors.Is(err, pricingdomain.ErrInvalidProductID),
		errors.Is(err, pricingdomain.ErrUnknownProductType),
		errors.Is(err, pricingdomain.ErrInvalidBillingCycle),
		errors.Is(err, pricingdomain.ErrInvalidQuantity),
		errors.Is(err, pricingdomain.ErrInvalidDomainAction),
		errors.Is(err, pricingdomain.ErrMissingDomainName),
		errors.Is(err, pricingdomain.ErrCycleNotOffered),
		errors.Is(err, catalogdomain.ErrPlanNotFound),
		errors.Is(err, catalogdomain.ErrTLDNotFound),
		errors.Is(err, coupondomain.ErrCouponInvalid),
		errors.Is(err, coupondomain.ErrCouponPerUserLimit),
		errors.Is(err, orderdomain.ErrMissingIdempotencyKey),
		errors.Is(err, orderdomain.ErrMissingPaymentRef),
		errors.Is(err, orderdomain.ErrInvalidPaymentMethod):
		return true
	default:
		return false
	}
}

func validationErrorField(err error) string {
	switch {
	case errors.Is(err, coupondomain.ErrCouponInvalid),
		errors.Is(err, coupondomain.ErrCouponPerUserLimit):
		return "coupon_code"
	case errors.Is(err, orderdomain.ErrMissingIdempotencyKey):
		return "idempotency_key"
	case errors.Is(err, orderdomain.ErrMissingPaymentRef):
		return "payment_id"
	case errors.Is(err, orderdomain.ErrInvalidPaymentMethod):
		return "payment_method"
	default:
		return "items"
	}
}
