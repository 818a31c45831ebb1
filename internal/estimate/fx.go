package estimate

import (
	"github.com/stockadefence/stockade/internal/estimate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("estimate.service",
	fx.Provide(service.New),
)
