package stratify

import (
	"fmt"
	"math"
)

// Request describes a stratified partitioning job. Exactly one of NSplits
// or SplitSizes must be provided.
type Request struct {
	// Rows is the dataset as a list of records.
	Rows []map[string]any `json:"data"`

	// Columns lists the column names of the dataset.
	Columns []string `json:"columns"`

	// NSplits is the number of equal stratified groups (2-10). Leave
	// zero when SplitSizes is provided.
	NSplits int `json:"n_splits,omitempty"`

	// StratifyColumns are the columns whose joined values define strata.
	StratifyColumns []string `json:"stratify_cols"`

	// SplitSizes are custom split proportions (e.g. [0.9, 0.1]); they
	// must sum to 1.0. Leave empty when NSplits is provided.
	SplitSizes []float64 `json:"split_sizes,omitempty"`

	// TestSize is an optional proportion (0.0-1.0) split off first as a
	// holdout test set.
	TestSize float64 `json:"test_size,omitempty"`

	// ReplaceMissing fills missing stratify-column values (0 for
	// numeric columns, "None" otherwise) instead of failing.
	ReplaceMissing bool `json:"replace_nan"`

	// Seed seeds the sampling for reproducible splits.
	Seed int64 `json:"random_state"`

	// TestColumns are the columns monitored by the balance tests. When
	// empty, all numeric non-stratify columns are monitored.
	TestColumns []string `json:"ks_test_columns,omitempty"`

	// MinPValue, when set, makes the splitter iterate with fresh seeds
	// until every monitored p-value meets the threshold. Requires
	// TestColumns.
	MinPValue *float64 `json:"min_p_value,omitempty"`

	// MaxIterations caps the reseeding attempts (1-1000). Default: 100.
	MaxIterations int `json:"max_iterations,omitempty"`
}

// TestStat is the outcome of one balance test on one column.
type TestStat struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	TestType  string  `json:"test_type"`
}

// Group is one stratified split of the dataset.
type Group struct {
	// Index is the 1-based group number.
	Index int `json:"stratum"`

	Rows     []map[string]any `json:"data"`
	RowCount int              `json:"num_rows"`

	// Proportion is the group's actual share of the partitioned rows.
	Proportion float64 `json:"proportion"`

	// RequestedProportion echoes the requested share for custom splits.
	RequestedProportion float64 `json:"requested_proportion,omitempty"`

	// Stats holds the balance test outcome per monitored column.
	Stats map[string]TestStat `json:"test_statistics"`
}

// TestSet is the optional holdout split.
type TestSet struct {
	Rows     []map[string]any    `json:"data"`
	RowCount int                 `json:"num_rows"`
	Stats    map[string]TestStat `json:"test_statistics"`
}

// IterationInfo reports the reseeding loop's outcome.
type IterationInfo struct {
	Performed          int                `json:"iterations_performed"`
	CriteriaMet        bool               `json:"criteria_met"`
	TargetPValue       float64            `json:"target_p_value"`
	AchievedMinPValues map[string]float64 `json:"achieved_min_p_values"`
	MaxIterations      int                `json:"max_iterations"`
}

// Split methods reported in results.
const (
	MethodEqualKFold        = "equal_kfold"
	MethodCustomProportions = "custom_proportions"
)

// Result is the outcome of a stratification job.
type Result struct {
	NSplits         int              `json:"n_splits"`
	StratifyColumns []string         `json:"stratify_cols"`
	TestColumns     []string         `json:"ks_test_columns"`
	Groups          []Group          `json:"stratified_groups"`
	TestSet         *TestSet         `json:"test_set,omitempty"`
	TotalRows       int              `json:"total_rows"`
	SplitMethod     string           `json:"split_method"`
	Iterations      *IterationInfo   `json:"iteration_info,omitempty"`
}

// defaultMaxIterations bounds the reseeding loop when unset.
const defaultMaxIterations = 100

// Validate checks the request's structural constraints.
func (r *Request) Validate() error {
	hasNSplits := r.NSplits != 0
	hasSizes := len(r.SplitSizes) > 0

	if !hasNSplits && !hasSizes {
		return fmt.Errorf("either 'n_splits' or 'split_sizes' must be provided")
	}
	if hasNSplits && hasSizes {
		return fmt.Errorf("provide either 'n_splits' or 'split_sizes', not both")
	}

	if hasSizes {
		if len(r.SplitSizes) < 2 {
			return fmt.Errorf("split_sizes must contain at least 2 proportions")
		}
		if len(r.SplitSizes) > 10 {
			return fmt.Errorf("number of split_sizes must be between 2 and 10")
		}
		var sum float64
		for _, size := range r.SplitSizes {
			if size <= 0 || size >= 1 {
				return fmt.Errorf("all split sizes must be between 0 and 1")
			}
			sum += size
		}
		if math.Abs(sum-1.0) > 1e-6 {
			return fmt.Errorf("split sizes must sum to 1.0")
		}
	} else if r.NSplits < 2 || r.NSplits > 10 {
		return fmt.Errorf("n_splits must be between 2 and 10")
	}

	if r.TestSize < 0 || r.TestSize > 1 {
		return fmt.Errorf("test_size must be between 0.0 and 1.0")
	}

	if len(r.StratifyColumns) == 0 {
		return fmt.Errorf("please provide at least one stratification column")
	}

	columns := make(map[string]bool, len(r.Columns))
	for _, c := range r.Columns {
		columns[c] = true
	}
	for _, col := range r.StratifyColumns {
		if !columns[col] {
			return fmt.Errorf("column %q not found in the dataset", col)
		}
	}
	for _, col := range r.TestColumns {
		if !columns[col] {
			return fmt.Errorf("test column %q not found in the dataset", col)
		}
	}

	if r.MinPValue != nil {
		if len(r.TestColumns) == 0 {
			return fmt.Errorf("when min_p_value is specified, ks_test_columns must also be provided")
		}
		if *r.MinPValue < 0 || *r.MinPValue > 1 {
			return fmt.Errorf("min_p_value must be between 0.0 and 1.0")
		}
	}

	if r.MaxIterations < 0 || r.MaxIterations > 1000 {
		return fmt.Errorf("max_iterations must be between 1 and 1000")
	}

	return nil
}

// splitCount returns the effective number of groups.
func (r *Request) splitCount() int {
	if len(r.SplitSizes) > 0 {
		return len(r.SplitSizes)
	}
	return r.NSplits
}
