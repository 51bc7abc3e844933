package scoring

import (
	"github.com/propelre/leadpulse/internal/scoring/service"
	"go.uber.org/fx"
)

var Module = fx.Module("scoring",
	fx.Provide(service.New),
)
