package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dataquery-hq/dataquery/pkg/catalog"
	"dataquery-hq/dataquery/pkg/cli"
	"dataquery-hq/dataquery/pkg/querybuilder"
)

var queryFlags struct {
	database string
	table    string
	columns  []string
	filters  []string
	sort     string
	limit    int
	format   string
	sqlOnly  bool
	count    bool
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Build and execute a one-shot query",
	Long: `Build a query against a catalog table and execute it.

The query command compiles the same SQL the API server would for a
/query/execute request, checks it against the catalog allow-list, and
prints the result in the chosen format.

Filters take the form column=value for equality or
column:operator:value for any supported operator (equals, not_equals,
contains, not_contains, greater_than, less_than, greater_equal,
less_equal, is_null, is_not_null, in, not_in). The in and not_in
operators take a comma-separated value list.

Examples:
  # Select everything the catalog allows
  dataquery query --database operational --table users

  # Filter, sort and limit
  dataquery query --database operational --table users \
    --filter status=active --sort created_at:desc --limit 50

  # Print the compiled SQL without executing it
  dataquery query --database operational --table users --sql

  # Row count only, as JSON
  dataquery query --database operational --table users --count --format json`,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryFlags.database, "database", "d", "", "catalog database id (required)")
	queryCmd.Flags().StringVarP(&queryFlags.table, "table", "t", "", "table name (required)")
	queryCmd.Flags().StringSliceVar(&queryFlags.columns, "columns", nil, "columns to select (default all allowed)")
	queryCmd.Flags().StringArrayVar(&queryFlags.filters, "filter", nil, "filter, column=value or column:operator:value (repeatable)")
	queryCmd.Flags().StringVar(&queryFlags.sort, "sort", "", "sort, column or column:desc")
	queryCmd.Flags().IntVar(&queryFlags.limit, "limit", 0, "row limit (0 = no limit)")
	queryCmd.Flags().StringVarP(&queryFlags.format, "format", "f", "table", "output format (table, json, csv)")
	queryCmd.Flags().BoolVar(&queryFlags.sqlOnly, "sql", false, "print compiled SQL without executing")
	queryCmd.Flags().BoolVar(&queryFlags.count, "count", false, "execute the count query instead")

	queryCmd.MarkFlagRequired("database")
	queryCmd.MarkFlagRequired("table")
}

func runQuery(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(queryFlags.format)
	if err != nil {
		return cli.NewUsageError("format", err.Error())
	}

	cfg, err := loadConfig()
	if err != nil {
		return cli.NewCommandError("query", err)
	}

	catalogStore, err := catalog.NewStore(cfg.Catalog.Path)
	if err != nil {
		return cli.NewCommandError("query", err)
	}

	req, err := buildRequest(catalogStore)
	if err != nil {
		return err
	}

	if result := querybuilder.Validate(*req); !result.Valid {
		return cli.NewUsageError("filter", strings.Join(result.Errors, "; "))
	}
	if !catalogStore.TableAllowed(req.DatabaseID, req.Table) {
		return cli.NewCommandError("query",
			fmt.Errorf("table %s.%s is not in the catalog", req.DatabaseID, req.Table))
	}
	if !catalogStore.ColumnsAllowed(req.DatabaseID, req.Table, req.Columns) {
		return cli.NewCommandError("query",
			fmt.Errorf("request references columns outside the catalog for %s.%s", req.DatabaseID, req.Table))
	}

	sqlText := querybuilder.BuildQuery(*req)
	if queryFlags.count {
		sqlText = querybuilder.BuildCountQuery(*req)
	}
	if queryFlags.sqlOnly {
		fmt.Println(sqlText)
		return nil
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	ds, err := openDatasource(cfg)
	if err != nil {
		return cli.NewCommandError("query", err)
	}
	defer ds.Close()

	if queryFlags.count {
		count, err := ds.ExecuteCount(ctx, sqlText)
		if err != nil {
			return cli.NewCommandError("query", err)
		}
		fmt.Println(count)
		return nil
	}

	result, err := ds.Execute(ctx, sqlText)
	if err != nil {
		return cli.NewCommandError("query", err)
	}

	return cli.NewFormatter(format).FormatTo(os.Stdout, result)
}

// buildRequest assembles a querybuilder.Request from the command flags.
// When no columns are given it selects every column the catalog allows.
func buildRequest(store *catalog.Store) (*querybuilder.Request, error) {
	columns := queryFlags.columns
	if len(columns) == 0 {
		for _, col := range store.Columns(queryFlags.database, queryFlags.table) {
			columns = append(columns, col.Name)
		}
	}

	req := &querybuilder.Request{
		DatabaseID: queryFlags.database,
		Table:      queryFlags.table,
		Columns:    columns,
		Limit:      queryFlags.limit,
	}

	for _, raw := range queryFlags.filters {
		f, err := parseFilter(raw)
		if err != nil {
			return nil, cli.NewUsageError("filter", err.Error())
		}
		req.Filters = append(req.Filters, f)
	}

	if queryFlags.sort != "" {
		col, dir, _ := strings.Cut(queryFlags.sort, ":")
		req.Sort = querybuilder.Sort{Column: col, Direction: dir}
	}

	return req, nil
}

// parseFilter accepts column=value shorthand for equality, or the full
// column:operator:value form. List operators split the value on commas.
func parseFilter(raw string) (querybuilder.Filter, error) {
	parts := strings.SplitN(raw, ":", 3)
	if len(parts) == 1 {
		col, value, ok := strings.Cut(raw, "=")
		if !ok || col == "" {
			return querybuilder.Filter{}, fmt.Errorf("%q is not column=value or column:operator:value", raw)
		}
		return querybuilder.Filter{Column: col, Operator: querybuilder.OpEquals, Value: value}, nil
	}

	op := querybuilder.Operator(parts[1])
	f := querybuilder.Filter{Column: parts[0], Operator: op}
	if op.IsNullCheck() {
		return f, nil
	}
	if len(parts) < 3 {
		return querybuilder.Filter{}, fmt.Errorf("operator %q needs a value", parts[1])
	}
	if op == querybuilder.OpIn || op == querybuilder.OpNotIn {
		values := strings.Split(parts[2], ",")
		list := make([]any, len(values))
		for i, v := range values {
			list[i] = strings.TrimSpace(v)
		}
		f.Value = list
	} else {
		f.Value = parts[2]
	}
	return f, nil
}
