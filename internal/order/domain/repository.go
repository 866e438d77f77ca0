package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertOrder(ctx context.Context, db *gorm.DB, order *Order) error
	InsertItems(ctx context.Context, db *gorm.DB, items []OrderItem) error
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	InsertTransaction(ctx context.Context, db *gorm.DB, txn *Transaction) error

	FindByNumber(ctx context.Context, db *gorm.DB, orderNumber string) (*Order, error)
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, userID snowflake.ID, key string) (*Order, error)
	FindItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID) ([]OrderItem, error)
	FindInvoiceByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Invoice, error)

	// TransitionStatus applies a conditional state transition and reports
	// whether a row was affected. The row count, not a prior read, decides
	// who wins a race.
	TransitionStatus(ctx context.Context, db *gorm.DB, orderID snowflake.ID, from, to OrderStatus, paymentStatus PaymentStatus, paymentID *string, now time.Time) (bool, error)

	UpdateInvoiceStatus(ctx context.Context, db *gorm.DB, orderID snowflake.ID, status InvoiceStatus, paidDate *time.Time, now time.Time) error
}
