package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Service exposes read-only catalog lookups. The checkout core consumes the
// catalog and never mutates it.
type Service interface {
	GetPlan(ctx context.Context, productType ProductType, id snowflake.ID) (Plan, error)
	GetTLD(ctx context.Context, id snowflake.ID) (TLD, error)
}

var (
	ErrPlanNotFound = errors.New("plan_not_found")
	ErrTLDNotFound  = errors.New("tld_not_found")
)
