package coupon

import (
	"github.com/hostline/hostline/internal/coupon/repository"
	"github.com/hostline/hostline/internal/coupon/service"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
