package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Run executes one full scoring pass. Per-contact failures are counted
	// and never abort the batch; a fatal error marks the run failed without
	// writing any snapshot rows. Cancelling ctx finalizes the run as
	// completed_with_errors with the counts accumulated so far.
	Run(ctx context.Context, cfg ScoreConfig) (*ScoringRun, error)

	GetRun(ctx context.Context, id snowflake.ID) (*ScoringRun, error)

	// LatestSnapshot returns nil without error when a contact has no history.
	LatestSnapshot(ctx context.Context, contactID snowflake.ID) (*ScoreSnapshot, error)

	// History returns snapshots inside the trailing window, oldest first.
	// Missing history yields an empty slice, never an error.
	History(ctx context.Context, contactID snowflake.ID, window time.Duration) ([]ScoreSnapshot, error)
}

var (
	ErrInvalidConfig = errors.New("invalid_score_config")
	ErrRunNotFound   = errors.New("run_not_found")
	ErrRunInProgress = errors.New("run_in_progress")
)
