// Package services contains server-side business logic: the task writer and
// statistics, first-run profile bootstrap, the tutorial lifecycle, user
// preferences and avatar storage. Services are built over a
// repomanager.RepositoryManager so every repository can be bound either to the
// pool or to a transaction.
package services

import (
	"context"
	"time"

	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/logging"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/server/metrics"
	"github.com/KingGoku910/TaskFlow-AI-sub000/internal/timex"
)

// Revalidator evicts cached views of paths for one user.
type Revalidator interface {
	Revalidate(ctx context.Context, userID string, paths ...string) int
}

type nopRevalidator struct{}

func (nopRevalidator) Revalidate(context.Context, string, ...string) int { return 0 }

// Deps carries the collaborators shared by all services. Zero fields get
// no-op (or wall clock) defaults.
type Deps struct {
	Logger  logging.Logger
	Views   Revalidator
	Metrics metrics.Recorder
	Now     timex.Clock
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Views == nil {
		d.Views = nopRevalidator{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// observe records the outcome of operation started at start. Call it
// deferred with a pointer to the named error result.
func (d Deps) observe(ctx context.Context, operation string, start time.Time, err *error) {
	d.Metrics.Observe(ctx, operation, *err == nil, time.Since(start))
}
