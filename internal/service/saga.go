package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settlements = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_settlements_total",
			Help: "Settlement operations by operation and outcome",
		},
		[]string{"op", "outcome"},
	)
	compensations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_saga_compensations_total",
			Help: "Rolled back settlement workflows by operation and failing step",
		},
		[]string{"op", "step"},
	)
	stockShortages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_stock_shortages_total",
		Help: "Order lines billed without enough stock on hand",
	})
)

type undoStep struct {
	step string
	undo func(ctx context.Context) error
}

// saga records what a workflow has applied so a later failure can be rolled
// back. It is not safe for concurrent use.
type saga struct {
	op      string
	applied []undoStep
}

func newSaga(op string) *saga {
	return &saga{op: op}
}

func (s *saga) done(step string, undo func(ctx context.Context) error) {
	s.applied = append(s.applied, undoStep{step: step, undo: undo})
}

// compensate undoes applied steps newest first, each under its own timeout.
// It keeps going past failures and returns them joined.
func (s *saga) compensate(ctx context.Context, timeout time.Duration) error {
	var errs []error
	for i := len(s.applied) - 1; i >= 0; i-- {
		u := s.applied[i]
		cctx, cancel := withStepTimeout(ctx, timeout)
		err := u.undo(cctx)
		cancel()
		if err != nil {
			errs = append(errs, fmt.Errorf("undo %s: %w", u.step, err))
		}
	}
	return errors.Join(errs...)
}

func withStepTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
