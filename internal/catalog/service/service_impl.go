package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/hostline/hostline/internal/catalog/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("catalog.service"),
		repo: p.Repo,
	}
}

// GetPlan implements domain.Service.
func (s *Service) GetPlan(ctx context.Context, productType domain.ProductType, id snowflake.ID) (domain.Plan, error) {
	item, err := s.repo.FindPlan(ctx, s.db, productType, id)
	if err != nil {
		return domain.Plan{}, err
	}
	if item == nil {
		return domain.Plan{}, domain.ErrPlanNotFound
	}
	return *item, nil
}

// GetTLD implements domain.Service.
func (s *Service) GetTLD(ctx context.Context, id snowflake.ID) (domain.TLD, error) {
	item, err := s.repo.FindTLD(ctx, s.db, id)
	if err != nil {
		return domain.TLD{}, err
	}
	if item == nil {
		return domain.TLD{}, domain.ErrTLDNotFound
	}
	return *item, nil
}
