package catalog

import (
	"github.com/hostline/hostline/internal/catalog/repository"
	"github.com/hostline/hostline/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
