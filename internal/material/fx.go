package material

import (
	"github.com/stockadefence/stockade/internal/material/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("material",
	fx.Provide(repository.Provide),
)
