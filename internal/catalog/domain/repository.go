package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindPlan(ctx context.Context, db *gorm.DB, productType ProductType, id snowflake.ID) (*Plan, error)
	FindTLD(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TLD, error)
}
