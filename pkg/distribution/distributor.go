// Package distribution implements the daily job that assigns newly
// eligible users to the currently active campaigns.
package distribution

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"dataquery-hq/dataquery/pkg/theory"
)

// Process stages, reported on failure so operators know where a run
// stopped.
const (
	StageFetchCampaigns = "fetch_campaigns"
	StageFetchUsers     = "fetch_users"
	StageDistribute     = "distribute"
)

// Skip reasons for runs that completed without distributing anyone.
const (
	SkipNoCampaigns = "no active campaigns"
	SkipNoUsers     = "no eligible users"
)

// UserSource yields the IINs of users eligible for distribution today.
type UserSource interface {
	EligibleIINs(ctx context.Context) ([]string, error)
}

// CampaignStore is the slice of the theory store the distributor needs.
// Satisfied by *theory.Store.
type CampaignStore interface {
	ActiveTheories(ctx context.Context) ([]*theory.Theory, error)
	AddMembers(ctx context.Context, theoryID int64, iins []string) (int, error)
}

// Report summarizes one distribution run.
type Report struct {
	RunAt            time.Time `json:"run_at"`
	Duration         string    `json:"duration"`
	CampaignsFound   int       `json:"campaigns_found"`
	UsersFound       int       `json:"users_found"`
	UsersDistributed int       `json:"users_distributed"`
	SkipReason       string    `json:"skip_reason,omitempty"`
	Stage            string    `json:"stage,omitempty"`
	Err              error     `json:"-"`
}

// Succeeded reports whether the run finished without error. A skipped
// run counts as success.
func (r *Report) Succeeded() bool { return r.Err == nil }

// Skipped reports whether the run completed but had nothing to do.
func (r *Report) Skipped() bool { return r.Err == nil && r.SkipReason != "" }

// Config tunes the distributor.
type Config struct {
	// Seed drives the shuffle so reruns over the same input produce
	// the same assignment.
	Seed int64
}

// Distributor assigns eligible users evenly across active campaigns.
type Distributor struct {
	campaigns CampaignStore
	users     UserSource
	config    *Config
	logger    *slog.Logger
}

// NewDistributor builds a distributor over the given stores.
func NewDistributor(campaigns CampaignStore, users UserSource, config *Config) *Distributor {
	if config == nil {
		config = &Config{Seed: 42}
	}
	return &Distributor{
		campaigns: campaigns,
		users:     users,
		config:    config,
		logger:    slog.Default().With("component", "distribution"),
	}
}

// Run executes one distribution pass. The returned report is never nil;
// check Report.Err for failures.
func (d *Distributor) Run(ctx context.Context) *Report {
	report := &Report{RunAt: time.Now().UTC()}
	defer func() {
		report.Duration = time.Since(report.RunAt).Round(time.Millisecond).String()
	}()

	d.logger.Info("distribution run started")

	campaigns, err := d.campaigns.ActiveTheories(ctx)
	if err != nil {
		report.Stage = StageFetchCampaigns
		report.Err = fmt.Errorf("failed to fetch active campaigns: %w", err)
		return report
	}
	report.CampaignsFound = len(campaigns)
	if len(campaigns) == 0 {
		report.SkipReason = SkipNoCampaigns
		d.logger.Info("distribution skipped", "reason", report.SkipReason)
		return report
	}

	iins, err := d.users.EligibleIINs(ctx)
	if err != nil {
		report.Stage = StageFetchUsers
		report.Err = fmt.Errorf("failed to fetch eligible users: %w", err)
		return report
	}
	report.UsersFound = len(iins)
	if len(iins) == 0 {
		report.SkipReason = SkipNoUsers
		d.logger.Info("distribution skipped", "reason", report.SkipReason)
		return report
	}

	assignments := splitEvenly(iins, len(campaigns), d.config.Seed)
	for i, campaign := range campaigns {
		if len(assignments[i]) == 0 {
			continue
		}
		added, err := d.campaigns.AddMembers(ctx, campaign.ID, assignments[i])
		if err != nil {
			report.Stage = StageDistribute
			report.Err = fmt.Errorf("failed to add members to theory %d: %w", campaign.ID, err)
			return report
		}
		report.UsersDistributed += added
		d.logger.Info("campaign assignment done",
			"theory_id", campaign.ID,
			"theory_name", campaign.Name,
			"users_added", added,
		)
	}

	d.logger.Info("distribution run completed",
		"campaigns", report.CampaignsFound,
		"users_found", report.UsersFound,
		"users_distributed", report.UsersDistributed,
	)
	return report
}

// splitEvenly shuffles the IINs with the seed and deals them out
// round-robin into n buckets. Bucket sizes differ by at most one.
func splitEvenly(iins []string, n int, seed int64) [][]string {
	shuffled := make([]string, len(iins))
	copy(shuffled, iins)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	buckets := make([][]string, n)
	for i, iin := range shuffled {
		buckets[i%n] = append(buckets[i%n], iin)
	}
	return buckets
}
