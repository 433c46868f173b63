package stratify

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

// Stratify validates the request and partitions its rows into balanced
// groups.
func Stratify(req *Request) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid stratification request: %w", err)
	}

	rows := cloneRows(req.Rows)

	if req.ReplaceMissing {
		replaceMissing(rows, req.StratifyColumns)
	}

	// Stratum key per row: stratify column values joined with "_".
	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = stratumKey(row, req.StratifyColumns)
	}

	// Drop strata too small to appear in every split.
	minSamples := req.splitCount()
	if req.TestSize > 0 {
		minSamples++
	}
	rows, keys = dropSmallStrata(rows, keys, minSamples)

	if countDistinct(keys) < 2 {
		return nil, fmt.Errorf("not enough unique strata after removing insufficient ones")
	}

	// Optional holdout test set comes off first.
	var testRows []map[string]any
	if req.TestSize > 0 {
		rows, keys, testRows = splitOffFraction(rows, keys, req.TestSize, req.Seed)
	}

	testColumns := req.TestColumns
	if len(testColumns) == 0 {
		testColumns = defaultTestColumns(rows, req.Columns, req.StratifyColumns)
	}

	var groups [][]map[string]any
	var stats []map[string]TestStat
	var iterInfo *IterationInfo

	if req.MinPValue != nil {
		groups, stats, iterInfo = iterateForBalance(rows, keys, req, testColumns)
	} else {
		groups, stats = performSplit(rows, keys, req, req.Seed, testColumns)
	}

	result := &Result{
		NSplits:         req.splitCount(),
		StratifyColumns: req.StratifyColumns,
		TestColumns:     testColumns,
		TotalRows:       len(rows),
		Iterations:      iterInfo,
	}
	if len(req.SplitSizes) > 0 {
		result.SplitMethod = MethodCustomProportions
	} else {
		result.SplitMethod = MethodEqualKFold
	}

	for i, groupRows := range groups {
		g := Group{
			Index:      i + 1,
			Rows:       groupRows,
			RowCount:   len(groupRows),
			Proportion: round4(float64(len(groupRows)) / float64(len(rows))),
			Stats:      stats[i],
		}
		if len(req.SplitSizes) > 0 {
			g.RequestedProportion = req.SplitSizes[i]
		}
		result.Groups = append(result.Groups, g)
	}

	if testRows != nil {
		testStats := make(map[string]TestStat, len(testColumns))
		for _, col := range testColumns {
			testStats[col] = columnTest(rows, testRows, col)
		}
		result.TestSet = &TestSet{
			Rows:     testRows,
			RowCount: len(testRows),
			Stats:    testStats,
		}
	}

	return result, nil
}

// iterateForBalance retries the split with reseeded randomness until every
// monitored p-value meets the threshold or the budget runs out, keeping
// the attempt with the highest minimum p-value.
func iterateForBalance(rows []map[string]any, keys []string, req *Request, testColumns []string) ([][]map[string]any, []map[string]TestStat, *IterationInfo) {
	maxIterations := req.MaxIterations
	if maxIterations == 0 {
		maxIterations = defaultMaxIterations
	}

	var bestGroups [][]map[string]any
	var bestStats []map[string]TestStat
	var bestMinPValues map[string]float64
	bestMin := -1.0

	iteration := 0
	criteriaMet := false

	for iteration < maxIterations && !criteriaMet {
		seed := req.Seed + int64(iteration)*1000

		groups, stats := performSplit(rows, keys, req, seed, testColumns)
		criteriaMet = meetsThreshold(stats, testColumns, *req.MinPValue)

		minPValues := minPValuesPerColumn(stats, testColumns)
		currentMin := overallMin(minPValues)

		if currentMin > bestMin {
			bestGroups = groups
			bestStats = stats
			bestMinPValues = minPValues
			bestMin = currentMin
		}

		iteration++
	}

	info := &IterationInfo{
		Performed:          iteration,
		CriteriaMet:        criteriaMet,
		TargetPValue:       *req.MinPValue,
		AchievedMinPValues: bestMinPValues,
		MaxIterations:      maxIterations,
	}

	return bestGroups, bestStats, info
}

// performSplit runs one stratified partition and scores every group.
func performSplit(rows []map[string]any, keys []string, req *Request, seed int64, testColumns []string) ([][]map[string]any, []map[string]TestStat) {
	var groups [][]map[string]any
	if len(req.SplitSizes) > 0 {
		groups = customSplits(rows, keys, req.SplitSizes, seed)
	} else {
		groups = equalSplits(rows, keys, req.NSplits, seed)
	}

	stats := make([]map[string]TestStat, len(groups))
	for i, groupRows := range groups {
		stats[i] = make(map[string]TestStat, len(testColumns))
		for _, col := range testColumns {
			stats[i][col] = columnTest(rows, groupRows, col)
		}
	}

	return groups, stats
}

// equalSplits deals every stratum's shuffled members round-robin across
// n near-equal groups.
func equalSplits(rows []map[string]any, keys []string, n int, seed int64) [][]map[string]any {
	rng := rand.New(rand.NewSource(seed))

	groups := make([][]map[string]any, n)
	for i := range groups {
		groups[i] = []map[string]any{}
	}

	for _, indices := range strataIndices(keys) {
		shuffle(rng, indices)
		// Rotate the starting group per stratum so small strata do not
		// all land in group 0.
		offset := rng.Intn(n)
		for k, idx := range indices {
			g := (offset + k) % n
			groups[g] = append(groups[g], rows[idx])
		}
	}

	return groups
}

// customSplits peels off each requested proportion stratum by stratum,
// giving the last split everything that remains.
func customSplits(rows []map[string]any, keys []string, sizes []float64, seed int64) [][]map[string]any {
	remaining := make([]int, len(rows))
	for i := range rows {
		remaining[i] = i
	}

	groups := make([][]map[string]any, len(sizes))

	for i := range sizes {
		if i == len(sizes)-1 {
			last := make([]map[string]any, 0, len(remaining))
			for _, idx := range remaining {
				last = append(last, rows[idx])
			}
			groups[i] = last
			break
		}

		// Proportion relative to what is still unassigned.
		var tail float64
		for _, s := range sizes[i:] {
			tail += s
		}
		relative := sizes[i] / tail

		rng := rand.New(rand.NewSource(seed + int64(i)))

		var take, keep []int
		for _, indices := range strataIndicesOf(keys, remaining) {
			shuffle(rng, indices)
			n := clamp(int(math.Round(relative*float64(len(indices)))), 1, len(indices))
			take = append(take, indices[:n]...)
			keep = append(keep, indices[n:]...)
		}

		group := make([]map[string]any, 0, len(take))
		for _, idx := range take {
			group = append(group, rows[idx])
		}
		groups[i] = group
		remaining = keep
	}

	return groups
}

// splitOffFraction removes a stratified fraction of the rows as a holdout
// set, returning the remainder and the holdout.
func splitOffFraction(rows []map[string]any, keys []string, fraction float64, seed int64) ([]map[string]any, []string, []map[string]any) {
	rng := rand.New(rand.NewSource(seed))

	var keepIdx, testIdx []int
	for _, indices := range strataIndices(keys) {
		shuffle(rng, indices)
		n := clamp(int(math.Round(fraction*float64(len(indices)))), 1, len(indices)-1)
		testIdx = append(testIdx, indices[:n]...)
		keepIdx = append(keepIdx, indices[n:]...)
	}

	keptRows := make([]map[string]any, 0, len(keepIdx))
	keptKeys := make([]string, 0, len(keepIdx))
	for _, idx := range keepIdx {
		keptRows = append(keptRows, rows[idx])
		keptKeys = append(keptKeys, keys[idx])
	}

	testRows := make([]map[string]any, 0, len(testIdx))
	for _, idx := range testIdx {
		testRows = append(testRows, rows[idx])
	}

	return keptRows, keptKeys, testRows
}

// strataIndices groups row indices by stratum key, in first-seen order.
func strataIndices(keys []string) [][]int {
	all := make([]int, len(keys))
	for i := range keys {
		all[i] = i
	}
	return strataIndicesOf(keys, all)
}

// strataIndicesOf groups a subset of row indices by stratum key.
func strataIndicesOf(keys []string, subset []int) [][]int {
	order := []string{}
	byKey := make(map[string][]int)
	for _, idx := range subset {
		k := keys[idx]
		if _, seen := byKey[k]; !seen {
			order = append(order, k)
		}
		byKey[k] = append(byKey[k], idx)
	}

	out := make([][]int, 0, len(order))
	for _, k := range order {
		out = append(out, byKey[k])
	}
	return out
}

// dropSmallStrata removes rows whose stratum has fewer members than
// minSamples.
func dropSmallStrata(rows []map[string]any, keys []string, minSamples int) ([]map[string]any, []string) {
	counts := make(map[string]int, len(keys))
	for _, k := range keys {
		counts[k]++
	}

	keptRows := rows[:0]
	keptKeys := keys[:0]
	for i, k := range keys {
		if counts[k] >= minSamples {
			keptRows = append(keptRows, rows[i])
			keptKeys = append(keptKeys, k)
		}
	}
	return keptRows, keptKeys
}

// replaceMissing fills nil stratify-column values in place: 0 for numeric
// columns, "None" otherwise.
func replaceMissing(rows []map[string]any, columns []string) {
	for _, col := range columns {
		numeric := isNumericColumn(rows, col)
		for _, row := range rows {
			if v, ok := row[col]; !ok || v == nil {
				if numeric {
					row[col] = float64(0)
				} else {
					row[col] = "None"
				}
			}
		}
	}
}

// defaultTestColumns picks every numeric column outside the stratify set.
func defaultTestColumns(rows []map[string]any, columns, stratifyColumns []string) []string {
	skip := make(map[string]bool, len(stratifyColumns))
	for _, c := range stratifyColumns {
		skip[c] = true
	}

	var out []string
	for _, c := range columns {
		if !skip[c] && isNumericColumn(rows, c) {
			out = append(out, c)
		}
	}
	return out
}

// meetsThreshold reports whether every monitored column's p-value clears
// the threshold in every group.
func meetsThreshold(stats []map[string]TestStat, columns []string, minPValue float64) bool {
	for _, groupStats := range stats {
		for _, col := range columns {
			if st, ok := groupStats[col]; ok && st.PValue < minPValue {
				return false
			}
		}
	}
	return true
}

// minPValuesPerColumn finds each column's worst p-value across groups.
func minPValuesPerColumn(stats []map[string]TestStat, columns []string) map[string]float64 {
	out := make(map[string]float64, len(columns))
	for _, col := range columns {
		minP := math.Inf(1)
		for _, groupStats := range stats {
			if st, ok := groupStats[col]; ok && st.PValue < minP {
				minP = st.PValue
			}
		}
		if !math.IsInf(minP, 1) {
			out[col] = minP
		}
	}
	return out
}

// overallMin returns the smallest recorded p-value, or -1 when empty.
func overallMin(pValues map[string]float64) float64 {
	min := math.Inf(1)
	for _, p := range pValues {
		if p < min {
			min = p
		}
	}
	if math.IsInf(min, 1) {
		return -1
	}
	return min
}

// stratumKey joins the stratify column values with underscores.
func stratumKey(row map[string]any, columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = stringify(row[col])
	}
	return strings.Join(parts, "_")
}

// stringify renders a value the way the stratum key and category counts
// need it: stable and type-insensitive for whole numbers.
func stringify(v any) string {
	switch n := v.(type) {
	case nil:
		return "None"
	case string:
		return n
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1e15 {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return stringify(float64(n))
	case int:
		return strconv.Itoa(n)
	case int64:
		return strconv.FormatInt(n, 10)
	case bool:
		return strconv.FormatBool(n)
	default:
		return fmt.Sprintf("%v", n)
	}
}

func cloneRows(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		c := make(map[string]any, len(row))
		for k, v := range row {
			c[k] = v
		}
		out[i] = c
	}
	return out
}

func countDistinct(keys []string) int {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		seen[k] = true
	}
	return len(seen)
}

func shuffle(rng *rand.Rand, indices []int) {
	rng.Shuffle(len(indices), func(a, b int) {
		indices[a], indices[b] = indices[b], indices[a]
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}
