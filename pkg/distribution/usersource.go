package distribution

import (
	"context"
	"fmt"
	"log/slog"

	"dataquery-hq/dataquery/pkg/datasource"
	"dataquery-hq/dataquery/pkg/theory"
)

// RowQuerier is the slice of the datasource the user source needs.
// Satisfied by *datasource.Datasource.
type RowQuerier interface {
	Execute(ctx context.Context, sqlText string) (*datasource.ResultSet, error)
}

// QueryUserSource fetches eligible users by running a configured query
// against the operational database. The result set must contain a
// column whose name includes "IIN".
type QueryUserSource struct {
	querier RowQuerier
	query   string
	logger  *slog.Logger
}

// NewQueryUserSource builds a user source over the given querier.
func NewQueryUserSource(querier RowQuerier, query string) *QueryUserSource {
	return &QueryUserSource{
		querier: querier,
		query:   query,
		logger:  slog.Default().With("component", "distribution"),
	}
}

// EligibleIINs runs the configured query and extracts the unique IINs.
func (s *QueryUserSource) EligibleIINs(ctx context.Context) ([]string, error) {
	if s.query == "" {
		return nil, fmt.Errorf("no users query configured")
	}

	result, err := s.querier.Execute(ctx, s.query)
	if err != nil {
		return nil, fmt.Errorf("users query failed: %w", err)
	}

	column := theory.DetectIINColumn(result.Columns)
	if column == "" {
		return nil, fmt.Errorf("users query result has no IIN column (columns: %v)", result.Columns)
	}

	iins := theory.ExtractIINs(result.Rows, column)
	s.logger.Debug("eligible users fetched", "rows", result.RowCount, "iins", len(iins))
	return iins, nil
}
