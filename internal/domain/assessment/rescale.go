package assessment

import "math"

// RescaledDataset has the same shape as Dataset but every cell is a defined
// value in [0, MaxEVScale]; missing observations have been treated as 0.
type RescaledDataset struct {
	subzoneIDs []string
	features   []string
	columns    map[string][]float64
}

func newRescaledDataset(d *Dataset) *RescaledDataset {
	return &RescaledDataset{
		subzoneIDs: d.subzoneIDs,
		features:   d.features,
		columns:    make(map[string][]float64, len(d.features)),
	}
}

// SubzoneIDs returns the ordered subzone identifiers.
func (r *RescaledDataset) SubzoneIDs() []string { return r.subzoneIDs }

// Features returns the ordered feature names.
func (r *RescaledDataset) Features() []string { return r.features }

// Column returns the rescaled values of one feature aligned to SubzoneIDs,
// or nil for an unknown feature.
func (r *RescaledDataset) Column(feature string) []float64 {
	return r.columns[feature]
}

// Value returns the rescaled cell for (subzone index, feature), or 0 for an
// unknown feature.
func (r *RescaledDataset) Value(subzoneIdx int, feature string) float64 {
	col := r.columns[feature]
	if col == nil || subzoneIdx < 0 || subzoneIdx >= len(col) {
		return 0
	}
	return col[subzoneIdx]
}

// zeroColumn installs an all-zero column for the feature.
func (r *RescaledDataset) zeroColumn(feature string) {
	r.columns[feature] = make([]float64, len(r.subzoneIDs))
}

// RescaleQualitative rescales presence/absence data onto the EV scale:
// presence (1) maps to MaxEVScale, absence (0) and missing map to 0.  The
// 0/1 precondition is enforced upstream by Dataset.ValidateQualitative.
func RescaleQualitative(d *Dataset) *RescaledDataset {
	out := newRescaledDataset(d)
	for _, f := range d.features {
		values := d.ColumnFilled(f)
		col := make([]float64, len(values))
		for i, v := range values {
			col[i] = v * MaxEVScale
		}
		out.columns[f] = col
	}
	return out
}

// RescaleQuantitative rescales continuous data onto the EV scale using
// column-wise min-max normalization: MaxEVScale * (v - min) / (max - min).
// A zero-range column (including the all-zero and all-missing cases) carries
// no information and rescales to all zeros rather than dividing by zero.
func RescaleQuantitative(d *Dataset) *RescaledDataset {
	out := newRescaledDataset(d)
	for _, f := range d.features {
		values := d.ColumnFilled(f)
		if len(values) == 0 {
			out.zeroColumn(f)
			continue
		}
		minV, maxV := values[0], values[0]
		for _, v := range values[1:] {
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}
		if !(maxV > minV) {
			out.zeroColumn(f)
			continue
		}
		col := make([]float64, len(values))
		span := maxV - minV
		for i, v := range values {
			col[i] = MaxEVScale * (v - minV) / span
		}
		out.columns[f] = col
	}
	return out
}

// DetectDataType inspects the observed values and guesses whether the
// dataset is qualitative or quantitative.  Columns that are strictly 0/1
// vote qualitative; columns with decimals, a value range above 1, or more
// than ten distinct values vote quantitative; sparse categorical columns
// vote qualitative.  Qualitative wins only on a strict vote majority, so a
// tie resolves to quantitative; an empty dataset defaults qualitative.
//
// The declared data type always wins; detection is surfaced to callers only
// as a hint.
func DetectDataType(d *Dataset) DataType {
	binaryVotes, continuousVotes := 0, 0

	for _, f := range d.features {
		var observed []float64
		for _, obs := range d.Column(f) {
			if !obs.Missing && !math.IsNaN(obs.Value) {
				observed = append(observed, obs.Value)
			}
		}
		if len(observed) == 0 {
			continue
		}

		distinct := make(map[float64]struct{}, len(observed))
		binary := true
		hasDecimals := false
		minV, maxV := observed[0], observed[0]
		for _, v := range observed {
			distinct[v] = struct{}{}
			if v != 0 && v != 1 {
				binary = false
			}
			if v != 0 && v != math.Trunc(v) {
				hasDecimals = true
			}
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}

		switch {
		case binary:
			binaryVotes++
		case hasDecimals || maxV-minV > 1 || len(distinct) > 10:
			continuousVotes++
		default:
			// Few distinct integer values, likely categorical.
			binaryVotes++
		}
	}

	if binaryVotes == 0 && continuousVotes == 0 {
		return Qualitative
	}
	if binaryVotes > continuousVotes {
		return Qualitative
	}
	return Quantitative
}
