package producttype

import (
	"github.com/stockadefence/stockade/internal/producttype/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("producttype",
	fx.Provide(repository.Provide),
)
