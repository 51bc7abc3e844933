package matching

import (
	"github.com/propelre/leadpulse/internal/matching/service"
	"go.uber.org/fx"
)

var Module = fx.Module("matching",
	fx.Provide(service.NewRedis),
	fx.Provide(service.New),
)
