package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dataquery-hq/dataquery/pkg/cli"
	"dataquery-hq/dataquery/pkg/distribution"
)

var distributeFlags struct {
	seed int64
}

var distributeCmd = &cobra.Command{
	Use:   "distribute",
	Short: "Run the user distribution once",
	Long: `Run one user distribution pass outside the scheduler.

The distribute command loads the eligible users with the configured
users query, splits them evenly across the active theories, and prints
a report. It does not send notification mail.

Examples:
  # Run with the configured seed
  dataquery distribute

  # Reproduce a specific assignment
  dataquery distribute --seed 42`,
	RunE: runDistribute,
}

func init() {
	rootCmd.AddCommand(distributeCmd)

	distributeCmd.Flags().Int64Var(&distributeFlags.seed, "seed", 0, "override the shuffle seed (0 = use config)")
}

func runDistribute(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("distribute", err)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	ds, err := openDatasource(cfg)
	if err != nil {
		return cli.NewCommandError("distribute", err)
	}
	defer ds.Close()

	theories, err := openTheories(cfg)
	if err != nil {
		return cli.NewCommandError("distribute", err)
	}
	defer theories.Close()

	seed := cfg.Distribution.Seed
	if distributeFlags.seed != 0 {
		seed = distributeFlags.seed
	}

	users := distribution.NewQueryUserSource(ds, cfg.Distribution.UsersQuery)
	distributor := distribution.NewDistributor(theories, users, &distribution.Config{Seed: seed})

	report := distributor.Run(ctx)
	if report.Err != nil {
		return cli.NewCommandError("distribute", report.Err)
	}

	if report.Skipped() {
		fmt.Printf("skipped: %s\n", report.SkipReason)
		return nil
	}
	fmt.Printf("campaigns: %d\n", report.CampaignsFound)
	fmt.Printf("users found: %d\n", report.UsersFound)
	fmt.Printf("users distributed: %d\n", report.UsersDistributed)
	fmt.Printf("duration: %s\n", report.Duration)
	return nil
}
