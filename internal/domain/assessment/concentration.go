package assessment

import (
	"math"
	"sort"
)

// ConcentrationWeight computes the AQ9 input table: per-feature spatial
// concentration-weighted, mean-normalized, rescaled abundance values.  Only
// features classified ROF participate; every other feature yields an
// all-zero column.
//
// Per ROF feature (missing cells filled with 0 first):
//
//  1. Normalize each subzone's value by the feature mean.  A zero mean means
//     the feature was never observed; the column resolves to zeros.
//  2. Compute the concentration ratio: y = (sum of values at or above the
//     p-th percentile of the strictly positive values) / (sum of all
//     values), z = count of positive values, ratio = y/z.  A feature whose
//     abundance sits in few top-percentile subzones scores a high y against
//     a low z.
//  3. Weight: normalized * ratio.
//
// A final pass rescales every ROF column to [0, MaxEVScale] by its own
// maximum weighted value.  All divisions are guarded: zero mean, zero total
// sum, zero positive count, and zero maximum each resolve the affected
// column to zeros.
//
// The result highlights subzones where a regularly occurring feature is both
// well above its own average and spatially concentrated — a hotspot
// detector, deliberately distinct from the plain abundance averaging of AQ8.
func ConcentrationWeight(d *Dataset, cls Classification, percentile float64) *RescaledDataset {
	if percentile <= 0 || percentile > 100 {
		percentile = DefaultConcentrationPercentile
	}

	out := newRescaledDataset(d)

	for _, f := range d.features {
		if !cls.Has(TagROF, f) {
			out.zeroColumn(f)
			continue
		}

		values := d.ColumnFilled(f)
		n := len(values)
		if n == 0 {
			out.zeroColumn(f)
			continue
		}

		var total float64
		for _, v := range values {
			total += v
		}
		mean := total / float64(n)
		if mean == 0 || math.IsNaN(mean) {
			out.zeroColumn(f)
			continue
		}

		var positives []float64
		for _, v := range values {
			if v > 0 {
				positives = append(positives, v)
			}
		}
		if len(positives) == 0 {
			out.zeroColumn(f)
			continue
		}

		cutoff := percentileOf(positives, percentile)
		var topSum float64
		for _, v := range values {
			if v >= cutoff {
				topSum += v
			}
		}

		yMetric := 0.0
		if total > 0 {
			yMetric = topSum / total
		}
		zMetric := float64(len(positives))

		ratio := 0.0
		if zMetric > 0 {
			ratio = yMetric / zMetric
		}

		col := make([]float64, n)
		for i, v := range values {
			col[i] = (v / mean) * ratio
		}
		out.columns[f] = col
	}

	// Final rescale: each ROF column maps onto [0, MaxEVScale] by its own
	// maximum so features of very different abundance ranges compare.
	for _, f := range d.features {
		if !cls.Has(TagROF, f) {
			continue
		}
		col := out.columns[f]
		maxW := 0.0
		for _, v := range col {
			maxW = math.Max(maxW, v)
		}
		if maxW > 0 && !math.IsNaN(maxW) {
			for i := range col {
				col[i] = MaxEVScale * col[i] / maxW
			}
		} else {
			out.zeroColumn(f)
		}
	}

	return out
}

// percentileOf returns the p-th percentile of values using linear
// interpolation between closest ranks.  values must be non-empty; the
// input slice is not modified.
func percentileOf(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
