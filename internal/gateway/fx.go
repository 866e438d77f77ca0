package gateway

import (
	"github.com/hostline/hostline/internal/config"
	"github.com/hostline/hostline/internal/gateway/adapters"
	"github.com/hostline/hostline/internal/gateway/adapters/offline"
	"github.com/hostline/hostline/internal/gateway/adapters/paypal"
	"go.uber.org/fx"
)

func NewRegistry(cfg config.Config) *adapters.Registry {
	return adapters.NewRegistry(
		offline.New(),
		paypal.New(cfg.Gateway),
	)
}

var Module = fx.Module("gateway",
	fx.Provide(NewRegistry),
)
