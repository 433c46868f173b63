// Package stratify partitions a result set into statistically balanced
// groups.
//
// Rows are bucketed into strata by the joined values of the stratify
// columns, then sampled proportionally from every stratum into the
// requested splits, so each group mirrors the population's composition.
// Balance is verified per monitored column with a two-sample
// Kolmogorov-Smirnov test (numeric) or a chi-square contingency test
// (categorical); when a minimum p-value is requested the split is retried
// with fresh seeds until the threshold is met or the iteration budget
// runs out, keeping the best attempt seen.
package stratify
