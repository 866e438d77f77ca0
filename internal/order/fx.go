package order

import (
	"github.com/hostline/hostline/internal/order/repository"
	"github.com/hostline/hostline/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
