package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/hostline/hostline/internal/order/domain"
	pricingdomain "github.com/hostline/hostline/internal/pricing/domain"
	"github.com/shopspring/decimal"
)

type validateCouponRequest struct {
	Code      string                   `json:"code"`
	CartTotal decimal.Decimal          `json:"cart_total"`
	Items     []pricingdomain.CartItem `json:"items"`
}

type calculateCartRequest struct {
	Items      []pricingdomain.CartItem `json:"items"`
	CouponCode string                   `json:"coupon_code"`
}

type createOrderRequest struct {
	Items          []pricingdomain.CartItem `json:"items"`
	CouponCode     string                   `json:"coupon_code"`
	PaymentMethod  string                   `json:"payment_method"`
	IdempotencyKey string                   `json:"idempotency_key"`
}

type confirmPaymentRequest struct {
	OrderNumber string `json:"order_number"`
	PaymentID   string `json:"payment_id"`
}

type refundOrderRequest struct {
	Reason string `json:"reason"`
}

// ValidateCoupon checks the coupon against the client's cart total, or
// against a server-side re-pricing when items are supplied. Nothing is
// reserved; redemption happens at order creation.
func (s *Server) ValidateCoupon(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req validateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		AbortWithError(c, newValidationError("code", "required", "coupon code is required"))
		return
	}

	subtotal := req.CartTotal
	if len(req.Items) > 0 {
		items, err := s.pricingSvc.Price(c.Request.Context(), req.Items)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		subtotal = decimal.Zero
		for _, item := range items {
			subtotal = subtotal.Add(item.LineTotal)
		}
	}
	if !subtotal.IsPositive() {
		AbortWithError(c, newValidationError("cart_total", "required", "cart_total or items are required"))
		return
	}

	discount, err := s.couponSvc.Validate(c.Request.Context(), code, subtotal, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"code":            strings.ToUpper(code),
		"valid":           true,
		"discount_amount": discount.Round(2),
	}})
}

// CalculateCart returns the server-side quote for a cart. The client
// renders these numbers but they are re-derived again at order creation.
func (s *Server) CalculateCart(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req calculateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	quote, err := s.pricingSvc.Quote(c.Request.Context(), pricingdomain.QuoteRequest{
		Items:      req.Items,
		CouponCode: strings.TrimSpace(req.CouponCode),
		UserID:     userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"items":    quote.Items,
		"subtotal": quote.Subtotal,
		"discount": quote.Discount,
		"tax":      quote.Tax,
		"total":    quote.Total,
		"currency": s.cfg.Billing.Currency,
	}})
}

func (s *Server) CreateOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		UserID:         userID,
		Items:          req.Items,
		CouponCode:     strings.TrimSpace(req.CouponCode),
		PaymentMethod:  strings.TrimSpace(req.PaymentMethod),
		IdempotencyKey: strings.TrimSpace(req.IdempotencyKey),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ConfirmPayment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req confirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orderNumber := strings.TrimSpace(req.OrderNumber)
	if orderNumber == "" {
		AbortWithError(c, newValidationError("order_number", "required", "order number is required"))
		return
	}

	err := s.orderSvc.ConfirmPayment(c.Request.Context(), orderdomain.ConfirmPaymentRequest{
		OrderNumber:      orderNumber,
		UserID:           userID,
		PaymentReference: strings.TrimSpace(req.PaymentID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"order_number": orderNumber,
		"status":       "completed",
	}})
}

func (s *Server) GetOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orderNumber := strings.TrimSpace(c.Param("order_number"))
	ord, err := s.orderSvc.GetByNumber(c.Request.Context(), orderNumber, userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": ord})
}

func (s *Server) CancelOrder(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orderNumber := strings.TrimSpace(c.Param("order_number"))
	if err := s.orderSvc.Cancel(c.Request.Context(), orderNumber, userID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"order_number": orderNumber,
		"status":       "cancelled",
	}})
}

func (s *Server) RefundOrder(c *gin.Context) {
	var req refundOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	orderNumber := strings.TrimSpace(c.Param("order_number"))
	if err := s.orderSvc.Refund(c.Request.Context(), orderNumber, strings.TrimSpace(req.Reason)); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"order_number": orderNumber,
		"status":       "refunded",
	}})
}
