package history

import (
	"context"
	"testing"
	"time"
)

func TestPrune(t *testing.T) {
	s := newTestStore(t)

	makeRecord(t, s, &Record{
		DatabaseID: "d", Table: "t", SQL: "old", Status: StatusSuccess,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -40),
	})
	makeRecord(t, s, &Record{DatabaseID: "d", Table: "t", SQL: "new", Status: StatusSuccess})

	p := NewPruner(s, &PrunerConfig{RetentionDays: 30, Schedule: "0 3 * * *"})

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
}

func TestPruneZeroRetention(t *testing.T) {
	s := newTestStore(t)

	makeRecord(t, s, &Record{
		DatabaseID: "d", Table: "t", SQL: "old", Status: StatusSuccess,
		CreatedAt: time.Now().UTC().AddDate(0, 0, -400),
	})

	p := NewPruner(s, &PrunerConfig{RetentionDays: 0})

	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0 with retention disabled", deleted)
	}
}

func TestPrunerStartStop(t *testing.T) {
	s := newTestStore(t)
	p := NewPruner(s, &PrunerConfig{RetentionDays: 30, Schedule: "0 3 * * *"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if p.NextRun() == nil {
		t.Error("expected a scheduled next run")
	}

	p.Stop()
}

func TestPrunerInvalidSchedule(t *testing.T) {
	s := newTestStore(t)
	p := NewPruner(s, &PrunerConfig{RetentionDays: 30, Schedule: "not a cron"})

	if err := p.Start(context.Background()); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestPrunerDisabledSchedule(t *testing.T) {
	s := newTestStore(t)
	p := NewPruner(s, &PrunerConfig{RetentionDays: 30, Schedule: ""})

	if err := p.Start(context.Background()); err != nil {
		t.Errorf("Start() with empty schedule should be a no-op, got %v", err)
	}
	if p.NextRun() != nil {
		t.Error("no run should be scheduled")
	}
}
