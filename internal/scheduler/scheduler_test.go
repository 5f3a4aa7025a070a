package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/dp_pos/internal/service"
)

type countingSender struct {
	calls atomic.Int32
	err   error
}

func (c *countingSender) SendReminders(ctx context.Context) (*service.ReminderRun, error) {
	c.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("no deadline")
	}
	if c.err != nil {
		return nil, c.err
	}
	return &service.ReminderRun{Customers: 2, Sent: 2}, nil
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNew_SchedulesDailyRun(t *testing.T) {
	loc := time.FixedZone("LKT", 5*3600+1800)
	sc, err := New(loc, "09:00", &countingSender{}, quiet)
	require.NoError(t, err)

	sc.Start()
	defer sc.Stop()

	next := sc.NextReminder().In(loc)
	assert.Equal(t, 9, next.Hour())
	assert.Equal(t, 0, next.Minute())
	assert.True(t, next.After(time.Now()))
}

func TestNew_RejectsBadTime(t *testing.T) {
	_, err := New(time.UTC, "25:99", &countingSender{}, quiet)
	assert.Error(t, err)
}

func TestRunReminders(t *testing.T) {
	sender := &countingSender{}
	sc, err := New(time.UTC, "09:00", sender, quiet)
	require.NoError(t, err)

	sc.runReminders()
	assert.EqualValues(t, 1, sender.calls.Load())

	sender.err = errors.New("db down")
	sc.runReminders()
	assert.EqualValues(t, 2, sender.calls.Load())
}
