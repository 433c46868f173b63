package distribution

import (
	"context"
	"testing"

	"dataquery-hq/dataquery/pkg/notify"
	"dataquery-hq/dataquery/pkg/theory"
)

func newTestScheduler(t *testing.T, config *SchedulerConfig) *Scheduler {
	t.Helper()
	campaigns := &fakeCampaigns{theories: []*theory.Theory{{ID: 1, Name: "alpha"}}}
	users := &fakeUsers{iins: makeIINs(10)}
	d := NewDistributor(campaigns, users, nil)
	mailer := notify.NewMailer(&notify.Config{Enabled: false})
	return NewScheduler(d, mailer, config)
}

func TestSchedulerStartStop(t *testing.T) {
	s := newTestScheduler(t, &SchedulerConfig{Schedule: "0 9 * * *", Enabled: true})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Error("scheduler should be running")
	}
	if s.NextRun().IsZero() {
		t.Error("NextRun() should be set while running")
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler should be stopped")
	}
	if !s.NextRun().IsZero() {
		t.Error("NextRun() should be zero when stopped")
	}
}

func TestSchedulerStartTwice(t *testing.T) {
	s := newTestScheduler(t, &SchedulerConfig{Schedule: "0 9 * * *", Enabled: true})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Stop()

	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() expected error")
	}
}

func TestSchedulerInvalidSchedule(t *testing.T) {
	s := newTestScheduler(t, &SchedulerConfig{Schedule: "not-cron", Enabled: true})

	if err := s.Start(context.Background()); err == nil {
		t.Error("Start() expected error for invalid schedule")
	}
}

func TestSchedulerDisabled(t *testing.T) {
	s := newTestScheduler(t, &SchedulerConfig{Schedule: "0 9 * * *", Enabled: false})

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.IsRunning() {
		t.Error("disabled scheduler should not run")
	}
}

func TestRunOnce(t *testing.T) {
	s := newTestScheduler(t, nil)

	report := s.RunOnce(context.Background())
	if report == nil || !report.Succeeded() {
		t.Fatalf("RunOnce() report = %+v", report)
	}
	if s.LastReport() != report {
		t.Error("LastReport() should return the latest run")
	}
}

func TestSchedulerStopOnContextCancel(t *testing.T) {
	s := newTestScheduler(t, &SchedulerConfig{Schedule: "0 9 * * *", Enabled: true})

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	// Stop is idempotent; calling it directly avoids racing the
	// goroutine watching the context.
	s.Stop()
	if s.IsRunning() {
		t.Error("scheduler should be stopped")
	}
}
