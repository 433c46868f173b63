package distribution

import (
	"context"
	"errors"
	"testing"

	"dataquery-hq/dataquery/pkg/theory"
)

type fakeCampaigns struct {
	theories []*theory.Theory
	added    map[int64][]string
	listErr  error
	addErr   error
}

func (f *fakeCampaigns) ActiveTheories(ctx context.Context) ([]*theory.Theory, error) {
	return f.theories, f.listErr
}

func (f *fakeCampaigns) AddMembers(ctx context.Context, theoryID int64, iins []string) (int, error) {
	if f.addErr != nil {
		return 0, f.addErr
	}
	if f.added == nil {
		f.added = make(map[int64][]string)
	}
	f.added[theoryID] = append(f.added[theoryID], iins...)
	return len(iins), nil
}

type fakeUsers struct {
	iins []string
	err  error
}

func (f *fakeUsers) EligibleIINs(ctx context.Context) ([]string, error) {
	return f.iins, f.err
}

func makeIINs(n int) []string {
	iins := make([]string, n)
	for i := range iins {
		iins[i] = string(rune('a' + i%26)) + "-iin"
	}
	for i := range iins {
		iins[i] = iins[i] + string(rune('0'+i/26))
	}
	return iins
}

func TestRunDistributesEvenly(t *testing.T) {
	campaigns := &fakeCampaigns{theories: []*theory.Theory{
		{ID: 1, Name: "alpha", IsActive: true},
		{ID: 2, Name: "beta", IsActive: true},
		{ID: 3, Name: "gamma", IsActive: true},
	}}
	users := &fakeUsers{iins: makeIINs(100)}

	d := NewDistributor(campaigns, users, &Config{Seed: 42})
	report := d.Run(context.Background())

	if !report.Succeeded() || report.Skipped() {
		t.Fatalf("unexpected report: err=%v skip=%q", report.Err, report.SkipReason)
	}
	if report.CampaignsFound != 3 || report.UsersFound != 100 {
		t.Errorf("found campaigns=%d users=%d, want 3 and 100", report.CampaignsFound, report.UsersFound)
	}
	if report.UsersDistributed != 100 {
		t.Errorf("UsersDistributed = %d, want 100", report.UsersDistributed)
	}

	// Bucket sizes differ by at most one.
	sizes := []int{len(campaigns.added[1]), len(campaigns.added[2]), len(campaigns.added[3])}
	for _, size := range sizes {
		if size < 33 || size > 34 {
			t.Errorf("bucket sizes = %v, want each within [33,34]", sizes)
			break
		}
	}
}

func TestRunReproducible(t *testing.T) {
	users := &fakeUsers{iins: makeIINs(50)}
	theories := []*theory.Theory{{ID: 1}, {ID: 2}}

	first := &fakeCampaigns{theories: theories}
	NewDistributor(first, users, &Config{Seed: 7}).Run(context.Background())

	second := &fakeCampaigns{theories: theories}
	NewDistributor(second, users, &Config{Seed: 7}).Run(context.Background())

	for id := int64(1); id <= 2; id++ {
		a, b := first.added[id], second.added[id]
		if len(a) != len(b) {
			t.Fatalf("theory %d sizes differ: %d vs %d", id, len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("theory %d assignment differs at %d: %q vs %q", id, i, a[i], b[i])
			}
		}
	}
}

func TestRunSkipsWithoutCampaigns(t *testing.T) {
	d := NewDistributor(&fakeCampaigns{}, &fakeUsers{iins: makeIINs(10)}, nil)
	report := d.Run(context.Background())

	if !report.Skipped() || report.SkipReason != SkipNoCampaigns {
		t.Errorf("report = %+v, want skip %q", report, SkipNoCampaigns)
	}
}

func TestRunSkipsWithoutUsers(t *testing.T) {
	campaigns := &fakeCampaigns{theories: []*theory.Theory{{ID: 1}}}
	d := NewDistributor(campaigns, &fakeUsers{}, nil)
	report := d.Run(context.Background())

	if !report.Skipped() || report.SkipReason != SkipNoUsers {
		t.Errorf("report = %+v, want skip %q", report, SkipNoUsers)
	}
	if len(campaigns.added) != 0 {
		t.Error("no members should be added on a skipped run")
	}
}

func TestRunReportsStageOnFailure(t *testing.T) {
	tests := []struct {
		name      string
		campaigns *fakeCampaigns
		users     *fakeUsers
		wantStage string
	}{
		{
			name:      "campaign fetch fails",
			campaigns: &fakeCampaigns{listErr: errors.New("db down")},
			users:     &fakeUsers{iins: makeIINs(5)},
			wantStage: StageFetchCampaigns,
		},
		{
			name:      "user fetch fails",
			campaigns: &fakeCampaigns{theories: []*theory.Theory{{ID: 1}}},
			users:     &fakeUsers{err: errors.New("query timeout")},
			wantStage: StageFetchUsers,
		},
		{
			name:      "member insert fails",
			campaigns: &fakeCampaigns{theories: []*theory.Theory{{ID: 1}}, addErr: errors.New("locked")},
			users:     &fakeUsers{iins: makeIINs(5)},
			wantStage: StageDistribute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NewDistributor(tt.campaigns, tt.users, nil).Run(context.Background())
			if report.Succeeded() {
				t.Fatal("expected failed report")
			}
			if report.Stage != tt.wantStage {
				t.Errorf("Stage = %q, want %q", report.Stage, tt.wantStage)
			}
		})
	}
}

func TestSplitEvenly(t *testing.T) {
	buckets := splitEvenly(makeIINs(10), 3, 1)
	total := 0
	for _, b := range buckets {
		total += len(b)
	}
	if total != 10 {
		t.Errorf("split lost users: total = %d, want 10", total)
	}
	if len(buckets[0]) != 4 || len(buckets[1]) != 3 || len(buckets[2]) != 3 {
		t.Errorf("bucket sizes = %d,%d,%d, want 4,3,3",
			len(buckets[0]), len(buckets[1]), len(buckets[2]))
	}
}
