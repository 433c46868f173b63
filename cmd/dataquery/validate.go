package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dataquery-hq/dataquery/pkg/catalog"
	"dataquery-hq/dataquery/pkg/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and catalog",
	Long: `Validate the configuration file and the catalog allow-list.

The validate command loads the configuration, applies defaults, checks
its constraints, and parses the catalog file. It reports what the
server would see on startup without opening any database.

Examples:
  # Validate the default config
  dataquery validate

  # Validate a specific config
  dataquery validate --config /etc/dataquery/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	fmt.Printf("config %s: ok\n", cfgFile)

	c, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}

	tables := 0
	for _, db := range c.Databases {
		tables += len(db.Tables)
	}
	fmt.Printf("catalog %s: %d databases, %d tables\n", cfg.Catalog.Path, len(c.Databases), tables)

	fmt.Printf("listen address: %s\n", cfg.Server.ListenAddress)
	fmt.Printf("history: enabled=%v retention=%dd\n", cfg.History.IsEnabled(), cfg.History.RetentionDays)
	fmt.Printf("distribution: enabled=%v schedule=%q\n", cfg.Distribution.Enabled, cfg.Distribution.Schedule)
	fmt.Printf("auth: enabled=%v keys=%d\n", cfg.Security.Auth.Enabled, len(cfg.Security.Auth.Keys))

	return nil
}
