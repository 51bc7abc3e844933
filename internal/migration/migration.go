package migration

import (
	catalogdomain "github.com/propelre/leadpulse/internal/catalog/domain"
	contactdomain "github.com/propelre/leadpulse/internal/contact/domain"
	"github.com/propelre/leadpulse/internal/guard"
	scoringdomain "github.com/propelre/leadpulse/internal/scoring/domain"
	signaldomain "github.com/propelre/leadpulse/internal/signal/domain"
	"gorm.io/gorm"
)

// Models is every table the engine owns, in dependency order.
func Models() []any {
	return []any{
		&contactdomain.Contact{},
		&signaldomain.Event{},
		&signaldomain.Communication{},
		&catalogdomain.Property{},
		&scoringdomain.ScoringRun{},
		&scoringdomain.ScoreSnapshot{},
		&scoringdomain.TrendAlert{},
		&guard.Record{},
	}
}

func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(Models()...)
}
