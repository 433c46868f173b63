package stratify

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// Balance test type labels.
const (
	testKS         = "ks_test"
	testChi2       = "chi2_test"
	testChi2Failed = "chi2_test_failed"
)

// columnTest picks the right balance test for a column: KS when the
// population values are numeric, chi-square otherwise.
func columnTest(population, sample []map[string]any, column string) TestStat {
	if isNumericColumn(population, column) {
		stat, p := ksTwoSample(numericValues(population, column), numericValues(sample, column))
		return TestStat{Statistic: stat, PValue: p, TestType: testKS}
	}
	return chi2Contingency(population, sample, column)
}

// isNumericColumn reports whether every present value of the column is
// numeric. Columns with no values at all are not numeric.
func isNumericColumn(rows []map[string]any, column string) bool {
	seen := false
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		if _, ok := toFloat(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// numericValues extracts the column's present numeric values.
func numericValues(rows []map[string]any, column string) []float64 {
	var values []float64
	for _, row := range rows {
		if f, ok := toFloat(row[column]); ok {
			values = append(values, f)
		}
	}
	return values
}

// toFloat converts supported numeric types.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	default:
		return 0, false
	}
}

// ksTwoSample runs the two-sample Kolmogorov-Smirnov test and returns the
// D statistic with its asymptotic p-value.
func ksTwoSample(a, b []float64) (statistic, pValue float64) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 1
	}

	sa := append([]float64(nil), a...)
	sb := append([]float64(nil), b...)
	sort.Float64s(sa)
	sort.Float64s(sb)

	// Walk both empirical CDFs tracking the maximum gap.
	var d float64
	i, j := 0, 0
	na, nb := float64(len(sa)), float64(len(sb))
	for i < len(sa) && j < len(sb) {
		x := math.Min(sa[i], sb[j])
		for i < len(sa) && sa[i] <= x {
			i++
		}
		for j < len(sb) && sb[j] <= x {
			j++
		}
		gap := math.Abs(float64(i)/na - float64(j)/nb)
		if gap > d {
			d = gap
		}
	}

	return d, ksPValue(d, len(sa), len(sb))
}

// ksPValue computes the asymptotic two-sample KS p-value via the
// Kolmogorov distribution series.
func ksPValue(d float64, n1, n2 int) float64 {
	en := math.Sqrt(float64(n1) * float64(n2) / float64(n1+n2))
	lambda := (en + 0.12 + 0.11/en) * d
	if lambda <= 0 {
		return 1
	}

	var sum float64
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2*lambda*lambda*float64(j)*float64(j))
		sum += term
		sign = -sign
		if math.Abs(term) < 1e-10 {
			break
		}
	}

	p := 2 * sum
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}

// chi2Contingency runs a chi-square test of homogeneity on the category
// counts of the population versus the sample.
func chi2Contingency(population, sample []map[string]any, column string) TestStat {
	popCounts := categoryCounts(population, column)
	sampleCounts := categoryCounts(sample, column)

	categories := make(map[string]bool)
	for c := range popCounts {
		categories[c] = true
	}
	for c := range sampleCounts {
		categories[c] = true
	}

	// No variation or no data: nothing to reject.
	if len(categories) < 2 {
		return TestStat{Statistic: 0, PValue: 1, TestType: testChi2}
	}

	var popRow, sampleRow []float64
	var total float64
	for c := range categories {
		popRow = append(popRow, float64(popCounts[c]))
		sampleRow = append(sampleRow, float64(sampleCounts[c]))
		total += float64(popCounts[c]) + float64(sampleCounts[c])
	}
	if total == 0 {
		return TestStat{Statistic: 0, PValue: 1, TestType: testChi2}
	}

	popTotal, sampleTotal := sum(popRow), sum(sampleRow)

	var chi2 float64
	valid := true
	for k := range popRow {
		colTotal := popRow[k] + sampleRow[k]
		expPop := popTotal * colTotal / total
		expSample := sampleTotal * colTotal / total
		if expPop == 0 || expSample == 0 {
			valid = false
			break
		}
		chi2 += (popRow[k] - expPop) * (popRow[k] - expPop) / expPop
		chi2 += (sampleRow[k] - expSample) * (sampleRow[k] - expSample) / expSample
	}
	if !valid {
		// Conservative: a degenerate table reports failure, not balance.
		return TestStat{Statistic: math.Inf(1), PValue: 0, TestType: testChi2Failed}
	}

	dof := float64(len(popRow) - 1)
	dist := distuv.ChiSquared{K: dof}
	p := dist.Survival(chi2)

	return TestStat{Statistic: chi2, PValue: p, TestType: testChi2}
}

// categoryCounts tallies present values of a column as strings.
func categoryCounts(rows []map[string]any, column string) map[string]int {
	counts := make(map[string]int)
	for _, row := range rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		counts[stringify(v)]++
	}
	return counts
}

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}
