package zonal

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistic names accepted in Options.Stats and used as keys in Row.Stats.
const (
	StatCount         = "count"
	StatMin           = "min"
	StatMax           = "max"
	StatMean          = "mean"
	StatMedian        = "median"
	StatStd           = "std"
	StatP10           = "p10"
	StatP90           = "p90"
	StatNodataRatio   = "nodata_ratio"
	StatCoverageRatio = "coverage_ratio"
)

// AllStats returns every supported statistic, in output order.
func AllStats() []string {
	return []string{
		StatCount, StatMin, StatMax, StatMean, StatMedian,
		StatStd, StatP10, StatP90, StatNodataRatio, StatCoverageRatio,
	}
}

func validStat(name string) bool {
	for _, s := range AllStats() {
		if s == name {
			return true
		}
	}
	return false
}

// percentile returns the p-quantile (0 <= p <= 1) of sorted values using
// linear interpolation between order statistics: the value at fractional
// rank h = p*(n-1). The same rule serves median, p10 and p90, so the
// three are always mutually consistent.
//
// gonum's stat.Quantile interpolates under a different cumulant
// convention, which is why this is computed directly.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// summarize computes the requested statistics from a zone's valid-value
// set plus its pixel accounting. values holds the samples where the
// coverage mask is true and the raster is not nodata; covered is the
// count of geometrically covered pixels regardless of validity;
// zoneArea is the polygon's planar area in the raster CRS.
//
// Never panics or errors: every empty-set and zero-denominator case
// produces NaN by policy.
//
//   - value statistics (min..p90): NaN when values is empty
//   - std: population standard deviation (divide by N, not N-1)
//   - nodata_ratio = (covered - len(values)) / covered; NaN when no
//     pixel is covered
//   - coverage_ratio = clamp(len(values)*pixelArea/zoneArea, 0, 1);
//     NaN when zoneArea is zero
func summarize(values []float64, covered int, pixelArea, zoneArea float64, stats []string) map[string]float64 {
	valid := len(values)

	var sorted []float64
	needSorted := false
	for _, s := range stats {
		if s == StatMedian || s == StatP10 || s == StatP90 {
			needSorted = true
		}
	}
	if needSorted && valid > 0 {
		sorted = make([]float64, valid)
		copy(sorted, values)
		sort.Float64s(sorted)
	}

	out := make(map[string]float64, len(stats))
	for _, s := range stats {
		out[s] = oneStat(s, values, sorted, valid, covered, pixelArea, zoneArea)
	}
	return out
}

func oneStat(name string, values, sorted []float64, valid, covered int, pixelArea, zoneArea float64) float64 {
	switch name {
	case StatCount:
		return float64(valid)
	case StatNodataRatio:
		if covered == 0 {
			return math.NaN()
		}
		return float64(covered-valid) / float64(covered)
	case StatCoverageRatio:
		if zoneArea == 0 {
			return math.NaN()
		}
		ratio := float64(valid) * pixelArea / zoneArea
		return math.Min(math.Max(ratio, 0), 1)
	}

	if valid == 0 {
		return math.NaN()
	}
	switch name {
	case StatMin:
		return floats.Min(values)
	case StatMax:
		return floats.Max(values)
	case StatMean:
		return stat.Mean(values, nil)
	case StatStd:
		return stat.PopStdDev(values, nil)
	case StatMedian:
		return percentile(sorted, 0.5)
	case StatP10:
		return percentile(sorted, 0.1)
	case StatP90:
		return percentile(sorted, 0.9)
	}
	return math.NaN()
}
