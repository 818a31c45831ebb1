package project

import (
	"github.com/stockadefence/stockade/internal/project/repository"
	"github.com/stockadefence/stockade/internal/project/service"
	"go.uber.org/fx"
)

var Module = fx.Module("project",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
