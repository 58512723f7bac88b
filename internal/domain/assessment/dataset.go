// Package assessment implements the Ecological Value Assessment (EVA)
// calculation engine: rescaling of raw survey observations, feature
// classification, concentration weighting, the fifteen Assessment Question
// (AQ) scores, and the EV max-reduction.
//
// Every function in this package is a pure, bounded-time transform over an
// in-memory table.  Degenerate numeric inputs (zero-variance columns, zero
// means, empty feature sets) resolve to defined defaults, never to a panic
// or an error; the only errors in this package come from structural dataset
// validation at the boundary.
package assessment

import (
	"fmt"
	"math"

	"github.com/razinkele/marbefes-eva-app/pkg/errors"
)

// Calculation constants.  Threshold and percentile have per-run overrides;
// the scale ceiling is fixed by the assessment methodology.
const (
	// MaxEVScale is the upper bound of the EV scale.  All rescaled values,
	// AQ scores, and EV values lie in [0, MaxEVScale].
	MaxEVScale = 5.0

	// DefaultRarityThreshold is the occurrence proportion at or below which
	// a feature is classified locally rare.  The bound is inclusive.
	DefaultRarityThreshold = 0.05

	// DefaultConcentrationPercentile is the percentile used by the AQ9
	// concentration weighting.
	DefaultConcentrationPercentile = 95.0

	// DefaultMaxFeatures is the feature-count ceiling enforced on input
	// datasets.
	DefaultMaxFeatures = 100
)

// DataType declares the semantics of a dataset's observations.
type DataType string

const (
	// Qualitative marks presence/absence (binary 0/1) observations.
	Qualitative DataType = "qualitative"

	// Quantitative marks continuous abundance observations.
	Quantitative DataType = "quantitative"
)

// ParseDataType converts a string to a DataType.
func ParseDataType(s string) (DataType, error) {
	switch DataType(s) {
	case Qualitative:
		return Qualitative, nil
	case Quantitative:
		return Quantitative, nil
	default:
		return "", errors.Newf(errors.CodeUnknownDataType, "unknown data type %q (want %q or %q)", s, Qualitative, Quantitative)
	}
}

// Observation is a single cell of the dataset.  Missing marks an absent
// observation, which is distinct from an observed zero.
type Observation struct {
	Value   float64 `json:"value"`
	Missing bool    `json:"missing,omitempty"`
}

// MissingObservation returns the canonical missing observation.
func MissingObservation() Observation { return Observation{Missing: true} }

// Obs returns a present observation with the given value.
func Obs(v float64) Observation { return Observation{Value: v} }

// Dataset is an ordered table of subzone records: one row per subzone, one
// column per feature.  Cells are NaN-tolerant via Observation.Missing.
// Column storage keeps the engine's feature-wise passes cache-friendly and
// mirrors the shape of the calculations.
type Dataset struct {
	subzoneIDs []string
	features   []string
	columns    map[string][]Observation // feature -> values aligned to subzoneIDs
}

// NewDataset constructs an empty dataset for the given subzone identifiers
// and feature names.  All cells start missing.
func NewDataset(subzoneIDs, features []string) *Dataset {
	ds := &Dataset{
		subzoneIDs: append([]string(nil), subzoneIDs...),
		features:   append([]string(nil), features...),
		columns:    make(map[string][]Observation, len(features)),
	}
	for _, f := range ds.features {
		col := make([]Observation, len(ds.subzoneIDs))
		for i := range col {
			col[i] = MissingObservation()
		}
		ds.columns[f] = col
	}
	return ds
}

// SubzoneIDs returns the ordered subzone identifiers.  The returned slice is
// shared; callers must not mutate it.
func (d *Dataset) SubzoneIDs() []string { return d.subzoneIDs }

// Features returns the ordered feature names.  The returned slice is shared;
// callers must not mutate it.
func (d *Dataset) Features() []string { return d.features }

// NumSubzones returns the number of subzone records.
func (d *Dataset) NumSubzones() int { return len(d.subzoneIDs) }

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int { return len(d.features) }

// Set assigns the observation for (subzone index, feature).  Unknown
// features are ignored.
func (d *Dataset) Set(subzoneIdx int, feature string, obs Observation) {
	col, ok := d.columns[feature]
	if !ok || subzoneIdx < 0 || subzoneIdx >= len(col) {
		return
	}
	col[subzoneIdx] = obs
}

// Column returns the observations of one feature aligned to SubzoneIDs, or
// nil for an unknown feature.  The returned slice is shared.
func (d *Dataset) Column(feature string) []Observation {
	return d.columns[feature]
}

// ColumnFilled returns the feature column with missing cells replaced by 0.
// This is the canonical pre-processing step for every rescaler: a missing
// observation contributes no abundance, and the engine never lets NaN
// propagate into outputs.
func (d *Dataset) ColumnFilled(feature string) []float64 {
	col := d.columns[feature]
	if col == nil {
		return nil
	}
	out := make([]float64, len(col))
	for i, obs := range col {
		if obs.Missing || math.IsNaN(obs.Value) {
			out[i] = 0
			continue
		}
		out[i] = obs.Value
	}
	return out
}

// Clone returns a deep copy of the dataset.  Used by the component store's
// snapshot-on-save semantics so later edits to the live working set cannot
// retroactively alter a saved component.
func (d *Dataset) Clone() *Dataset {
	clone := &Dataset{
		subzoneIDs: append([]string(nil), d.subzoneIDs...),
		features:   append([]string(nil), d.features...),
		columns:    make(map[string][]Observation, len(d.columns)),
	}
	for f, col := range d.columns {
		clone.columns[f] = append([]Observation(nil), col...)
	}
	return clone
}

// Validate checks the structural invariants: at least one subzone, unique
// non-empty subzone identifiers, and a feature count within maxFeatures
// (<=0 means DefaultMaxFeatures).
func (d *Dataset) Validate(maxFeatures int) error {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	if len(d.subzoneIDs) == 0 {
		return errors.New(errors.CodeDatasetEmpty, "dataset must contain at least one subzone")
	}
	if len(d.features) > maxFeatures {
		return errors.Newf(errors.CodeTooManyFeatures, "dataset has %d features, limit is %d", len(d.features), maxFeatures)
	}
	seen := make(map[string]struct{}, len(d.subzoneIDs))
	for _, id := range d.subzoneIDs {
		if id == "" {
			return errors.New(errors.CodeEmptySubzoneID, "subzone identifiers must be non-empty")
		}
		if _, dup := seen[id]; dup {
			return errors.New(errors.CodeDuplicateSubzone, "duplicate subzone identifier").WithDetail(fmt.Sprintf("id=%s", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ValidateQualitative enforces the qualitative precondition: every present
// observation must be 0 or 1.  The qualitative rescaler multiplies raw
// values by MaxEVScale without clamping, so a non-binary value would push
// outputs beyond the scale ceiling; rejecting it here keeps the bounded
// range invariant intact.
func (d *Dataset) ValidateQualitative() error {
	for _, f := range d.features {
		for i, obs := range d.columns[f] {
			if obs.Missing {
				continue
			}
			if obs.Value != 0 && obs.Value != 1 {
				return errors.New(errors.CodeNonBinaryQualitative, "qualitative dataset must contain only 0/1 values").
					WithDetail(fmt.Sprintf("feature=%s subzone=%s value=%g", f, d.subzoneIDs[i], obs.Value))
			}
		}
	}
	return nil
}
