// Package store persists the usage running total and the daily practice
// records. Two backends exist: SQLite for single-node deployments and
// Postgres for shared ones.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/llmpulse/radar/internal/model"
)

// ErrDuplicateDate is returned by InsertPractice when a record already
// exists for the date. Callers treat it as "someone else generated first"
// and re-read.
var ErrDuplicateDate = eris.New("store: practice record already exists for date")

// Store defines the persistence interface for the radar service.
type Store interface {
	// Usage running total. LoadUsage returns nil when nothing has been
	// persisted yet.
	LoadUsage(ctx context.Context) (*model.TokenUsage, error)
	SaveUsage(ctx context.Context, u model.TokenUsage) error

	// Daily practice records. GetPractice returns nil when no record
	// exists for the date.
	GetPractice(ctx context.Context, date string) (*model.DailyPracticeRecord, error)
	InsertPractice(ctx context.Context, rec model.DailyPracticeRecord) (*model.DailyPracticeRecord, error)
	ListPractices(ctx context.Context, limit int) ([]model.DailyPracticeRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
