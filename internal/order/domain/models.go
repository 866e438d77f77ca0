// Package domain contains the order aggregate, its invoice companion and
// the append-only transaction ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/hostline/hostline/internal/catalog/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// OrderStatus represents order lifecycle states. Transitions are driven by
// conditional updates so racing confirmations and cancellations cannot
// corrupt state.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// PaymentStatus tracks the money side of an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Order is the aggregate root written only by the order writer. Monetary
// fields are recomputed server-side and never taken from the client.
type Order struct {
	ID             snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrderNumber    string          `json:"order_number" gorm:"type:text;not null;uniqueIndex:ux_orders_order_number"`
	UserID         snowflake.ID    `json:"user_id" gorm:"not null;index"`
	Status         OrderStatus     `json:"status" gorm:"type:text;not null;default:'pending'"`
	PaymentStatus  PaymentStatus   `json:"payment_status" gorm:"type:text;not null;default:'unpaid'"`
	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Discount       decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null;default:0"`
	Tax            decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Currency       string          `json:"currency" gorm:"type:text;not null"`
	CouponCode     *string         `json:"coupon_code" gorm:"type:text;index"`
	PaymentMethod  string          `json:"payment_method" gorm:"type:text;not null"`
	PaymentID      *string         `json:"payment_id" gorm:"type:text"`
	IdempotencyKey *string         `json:"-" gorm:"type:text;uniqueIndex:ux_orders_idempotency_key"`
	CreatedAt      time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderItem is an immutable snapshot of a priced cart line. The price
// recorded here stays authoritative for invoicing and provisioning even if
// the catalog changes later.
type OrderItem struct {
	ID           snowflake.ID                `json:"id" gorm:"primaryKey"`
	OrderID      snowflake.ID                `json:"order_id" gorm:"not null;index"`
	ProductType  catalogdomain.ProductType   `json:"product_type" gorm:"type:text;not null"`
	ProductID    snowflake.ID                `json:"product_id" gorm:"not null"`
	Description  string                      `json:"description" gorm:"type:text;not null"`
	BillingCycle catalogdomain.BillingCycle  `json:"billing_cycle" gorm:"type:text;not null"`
	DomainName   *string                     `json:"domain_name" gorm:"type:text"`
	DomainAction *catalogdomain.DomainAction `json:"domain_action" gorm:"type:text"`
	Years        *int                        `json:"years" gorm:""`
	Quantity     int                         `json:"quantity" gorm:"not null;default:1"`
	UnitPrice    decimal.Decimal             `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	SetupFee     decimal.Decimal             `json:"setup_fee" gorm:"type:decimal(12,2);not null;default:0"`
	LineTotal    decimal.Decimal             `json:"line_total" gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time                   `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (OrderItem) TableName() string { return "order_items" }

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusRefunded  InvoiceStatus = "refunded"
)

// Invoice is the one-to-one companion of an order, created in the same
// transaction. due_date is informational; dunning is out of scope.
type Invoice struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey"`
	InvoiceNumber string          `json:"invoice_number" gorm:"type:text;not null;uniqueIndex:ux_invoices_invoice_number"`
	OrderID       snowflake.ID    `json:"order_id" gorm:"not null;uniqueIndex:ux_invoices_order_id"`
	UserID        snowflake.ID    `json:"user_id" gorm:"not null;index"`
	Status        InvoiceStatus   `json:"status" gorm:"type:text;not null;default:'unpaid'"`
	Subtotal      decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:decimal(12,2);not null;default:0"`
	Tax           decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null;default:0"`
	Total         decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Currency      string          `json:"currency" gorm:"type:text;not null"`
	DueDate       time.Time       `json:"due_date" gorm:"not null"`
	PaidDate      *time.Time      `json:"paid_date" gorm:""`
	CreatedAt     time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// TransactionType marks a ledger entry as a payment or its reversal.
type TransactionType string

const (
	TransactionTypePayment TransactionType = "payment"
	TransactionTypeRefund  TransactionType = "refund"
)

// Transaction is an append-only ledger entry for a monetary event. Rows are
// never updated; a refund is a distinct reversing entry.
type Transaction struct {
	ID              snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrderID         snowflake.ID    `json:"order_id" gorm:"not null;index"`
	InvoiceID       snowflake.ID    `json:"invoice_id" gorm:"not null;index"`
	UserID          snowflake.ID    `json:"user_id" gorm:"not null"`
	Type            TransactionType `json:"type" gorm:"type:text;not null"`
	Gateway         string          `json:"gateway" gorm:"type:text;not null"`
	GatewayTxnID    *string         `json:"gateway_txn_id" gorm:"type:text"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency        string          `json:"currency" gorm:"type:text;not null"`
	Status          string          `json:"status" gorm:"type:text;not null"`
	GatewayResponse datatypes.JSON  `json:"gateway_response" gorm:"type:jsonb"`
	CreatedAt       time.Time       `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Transaction) TableName() string { return "transactions" }
