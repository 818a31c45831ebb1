package formulatemplate

import (
	"github.com/stockadefence/stockade/internal/formulatemplate/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("formulatemplate",
	fx.Provide(repository.Provide),
)
