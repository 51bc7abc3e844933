package signal

import (
	"github.com/propelre/leadpulse/internal/signal/repository"
	"github.com/propelre/leadpulse/internal/signal/service"
	"go.uber.org/fx"
)

var Module = fx.Module("signal",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
