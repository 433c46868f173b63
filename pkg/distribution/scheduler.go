package distribution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dataquery-hq/dataquery/pkg/notify"
)

// SchedulerConfig configures the daily distribution schedule.
type SchedulerConfig struct {
	// Schedule is a standard 5-field cron expression.
	Schedule string

	// Enabled gates the scheduler entirely.
	Enabled bool
}

// DefaultSchedulerConfig runs every day at 09:00.
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		Schedule: "0 9 * * *",
		Enabled:  true,
	}
}

// Scheduler runs the distributor on a cron schedule and emails a report
// after every run. Notification failures are logged, never fatal.
type Scheduler struct {
	distributor *Distributor
	mailer      *notify.Mailer
	config      *SchedulerConfig
	logger      *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	running bool

	lastMu     sync.RWMutex
	lastReport *Report
}

// NewScheduler builds a scheduler around the distributor.
func NewScheduler(distributor *Distributor, mailer *notify.Mailer, config *SchedulerConfig) *Scheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	return &Scheduler{
		distributor: distributor,
		mailer:      mailer,
		config:      config,
		logger:      slog.Default().With("component", "distribution-scheduler"),
	}
}

// Start begins the cron schedule. Returns an error if the schedule is
// invalid or the scheduler is already running.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.config.Enabled {
		s.logger.Info("distribution scheduler disabled")
		return nil
	}
	if s.running {
		return fmt.Errorf("distribution scheduler already running")
	}

	if _, err := cron.ParseStandard(s.config.Schedule); err != nil {
		return fmt.Errorf("invalid distribution schedule %q: %w", s.config.Schedule, err)
	}

	s.cron = cron.New()
	entryID, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule distribution: %w", err)
	}
	s.entryID = entryID
	s.cron.Start()
	s.running = true

	s.logger.Info("distribution scheduler started",
		"schedule", s.config.Schedule,
		"next_run", s.cron.Entry(entryID).Next,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop halts the schedule, waiting for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("distribution scheduler stopped")
}

// IsRunning reports whether the schedule is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled run time, zero when stopped.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// LastReport returns the report of the most recent run, nil if none.
func (s *Scheduler) LastReport() *Report {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.lastReport
}

// RunOnce executes one distribution pass immediately and sends the
// matching notification. Used by the cron entry and the manual trigger
// endpoint.
func (s *Scheduler) RunOnce(ctx context.Context) *Report {
	report := s.distributor.Run(ctx)

	s.lastMu.Lock()
	s.lastReport = report
	s.lastMu.Unlock()

	s.notify(report)
	return report
}

func (s *Scheduler) notify(report *Report) {
	if s.mailer == nil {
		return
	}

	duration, _ := time.ParseDuration(report.Duration)
	nr := notify.DistributionReport{
		RunAt:            report.RunAt,
		Duration:         duration,
		CampaignsFound:   report.CampaignsFound,
		UsersFound:       report.UsersFound,
		UsersDistributed: report.UsersDistributed,
		SkipReason:       report.SkipReason,
		Stage:            report.Stage,
		Err:              report.Err,
	}

	var err error
	switch {
	case !report.Succeeded():
		err = s.mailer.SendDistributionError(nr)
	case report.Skipped():
		err = s.mailer.SendDistributionSkipped(nr)
	default:
		err = s.mailer.SendDistributionSuccess(nr)
	}
	if err != nil {
		s.logger.Error("failed to send distribution notification", "error", err)
	}
}
