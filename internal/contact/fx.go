package contact

import (
	"github.com/propelre/leadpulse/internal/contact/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("contact",
	fx.Provide(repository.Provide),
)
