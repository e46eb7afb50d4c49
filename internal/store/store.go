package store

import (
	"github.com/taxdrill/backend/internal/domain/run"
)

// AttemptLog is the durable append-only record of scored attempts. Attempts
// are never updated or deleted; history is the union of everything appended.
//
// AppendAttempt matches run.AttemptSink, so a log plugs straight into the
// session as its durable mirror.
type AttemptLog interface {
	AppendAttempt(run.Attempt) error
	LoadAttempts() ([]run.Attempt, error)
	Close() error
}
