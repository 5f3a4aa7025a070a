// Package scheduler runs the daily balance reminder batch.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/Skotchmaster/dp_pos/internal/service"
	"github.com/Skotchmaster/dp_pos/pkg/logging"
)

const (
	reminderTag     = "balance_reminders"
	reminderTimeout = 10 * time.Minute
)

type ReminderSender interface {
	SendReminders(ctx context.Context) (*service.ReminderRun, error)
}

type Scheduler struct {
	s      *gocron.Scheduler
	sender ReminderSender
	log    *slog.Logger
}

// New schedules the reminder batch every day at `at` ("15:04") in loc.
func New(loc *time.Location, at string, sender ReminderSender, log *slog.Logger) (*Scheduler, error) {
	sc := &Scheduler{
		s:      gocron.NewScheduler(loc),
		sender: sender,
		log:    log,
	}
	sc.s.SingletonModeAll()
	if _, err := sc.s.Every(1).Day().At(at).Tag(reminderTag).Do(sc.runReminders); err != nil {
		return nil, fmt.Errorf("schedule reminders at %q: %w", at, err)
	}
	return sc, nil
}

func (sc *Scheduler) Start() { sc.s.StartAsync() }

func (sc *Scheduler) Stop() { sc.s.Stop() }

// NextReminder is zero until the scheduler has started.
func (sc *Scheduler) NextReminder() time.Time {
	jobs, err := sc.s.FindJobsByTag(reminderTag)
	if err != nil || len(jobs) == 0 {
		return time.Time{}
	}
	return jobs[0].NextRun()
}

func (sc *Scheduler) runReminders() {
	l := sc.log.With("job", reminderTag)
	ctx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), l), reminderTimeout)
	defer cancel()

	run, err := sc.sender.SendReminders(ctx)
	if err != nil {
		l.Error("reminder_job_failed", "error", err)
		return
	}
	l.Info("reminder_job_done", "customers", run.Customers, "sent", run.Sent, "failed", run.Failed)
}
