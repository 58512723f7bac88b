package assessment

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
)

// AQ identifies one of the fifteen Assessment Questions.
type AQ string

const (
	AQ1  AQ = "AQ1"
	AQ2  AQ = "AQ2"
	AQ3  AQ = "AQ3"
	AQ4  AQ = "AQ4"
	AQ5  AQ = "AQ5"
	AQ6  AQ = "AQ6"
	AQ7  AQ = "AQ7"
	AQ8  AQ = "AQ8"
	AQ9  AQ = "AQ9"
	AQ10 AQ = "AQ10"
	AQ11 AQ = "AQ11"
	AQ12 AQ = "AQ12"
	AQ13 AQ = "AQ13"
	AQ14 AQ = "AQ14"
	AQ15 AQ = "AQ15"
)

// AllAQs returns the fifteen Assessment Questions in canonical order.
func AllAQs() []AQ {
	return []AQ{AQ1, AQ2, AQ3, AQ4, AQ5, AQ6, AQ7, AQ8, AQ9, AQ10, AQ11, AQ12, AQ13, AQ14, AQ15}
}

// QualitativeAQs returns the AQ subset that applies to qualitative runs and
// feeds the qualitative EV reduction.
func QualitativeAQs() []AQ {
	return []AQ{AQ1, AQ3, AQ5, AQ7, AQ10, AQ12, AQ14}
}

// QuantitativeAQs returns the AQ subset that applies to quantitative runs
// and feeds the quantitative EV reduction.
func QuantitativeAQs() []AQ {
	return []AQ{AQ2, AQ4, AQ6, AQ8, AQ9, AQ11, AQ13, AQ15}
}

// SourceTable selects which rescaled table an AQ averages over.
type SourceTable int

const (
	// SourceQualitative reads the qualitative rescale.
	SourceQualitative SourceTable = iota

	// SourceQuantitative reads the quantitative rescale.
	SourceQuantitative

	// SourceConcentration reads the AQ9 concentration-weighted table.
	SourceConcentration
)

// AQDefinition ties an Assessment Question to its required data type,
// feature-tag filter, and source table.  An empty Filter means all features.
type AQDefinition struct {
	ID       AQ
	DataType DataType
	Filter   Tag
	Source   SourceTable
}

// Definitions returns the fifteen AQ definitions in canonical order.
func Definitions() []AQDefinition {
	return []AQDefinition{
		{ID: AQ1, DataType: Qualitative, Filter: TagLRF, Source: SourceQualitative},
		{ID: AQ2, DataType: Quantitative, Filter: TagLRF, Source: SourceQuantitative},
		{ID: AQ3, DataType: Qualitative, Filter: TagRRF, Source: SourceQualitative},
		{ID: AQ4, DataType: Quantitative, Filter: TagRRF, Source: SourceQuantitative},
		{ID: AQ5, DataType: Qualitative, Filter: TagNRF, Source: SourceQualitative},
		{ID: AQ6, DataType: Quantitative, Filter: TagNRF, Source: SourceQuantitative},
		// AQ7 has no filter: it is the baseline question that keeps at
		// least one AQ active for every qualitative run.
		{ID: AQ7, DataType: Qualitative, Filter: "", Source: SourceQualitative},
		{ID: AQ8, DataType: Quantitative, Filter: TagROF, Source: SourceQuantitative},
		{ID: AQ9, DataType: Quantitative, Filter: TagROF, Source: SourceConcentration},
		{ID: AQ10, DataType: Qualitative, Filter: TagESF, Source: SourceQualitative},
		{ID: AQ11, DataType: Quantitative, Filter: TagESF, Source: SourceQuantitative},
		{ID: AQ12, DataType: Qualitative, Filter: TagHFSBH, Source: SourceQualitative},
		{ID: AQ13, DataType: Quantitative, Filter: TagHFSBH, Source: SourceQuantitative},
		{ID: AQ14, DataType: Qualitative, Filter: TagSS, Source: SourceQualitative},
		{ID: AQ15, DataType: Quantitative, Filter: TagSS, Source: SourceQuantitative},
	}
}

// Score is one AQ cell: either an applicable value in [0, MaxEVScale] or
// not-applicable.  An explicit tagged type is used instead of a NaN sentinel
// so the "no value exists" semantic survives serialization; not-applicable
// cells marshal to JSON null.
type Score struct {
	Value      float64
	Applicable bool
}

// ApplicableScore constructs an applicable score.
func ApplicableScore(v float64) Score { return Score{Value: v, Applicable: true} }

// NotApplicable constructs the not-applicable score.
func NotApplicable() Score { return Score{} }

// MarshalJSON encodes applicable scores as numbers and not-applicable
// scores as null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Applicable {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts a number or null.
func (s *Score) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NotApplicable()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = ApplicableScore(v)
	return nil
}

// ResultRow holds the fifteen AQ scores and the EV value for one subzone.
type ResultRow struct {
	SubzoneID string       `json:"subzone_id"`
	Scores    map[AQ]Score `json:"scores"`
	EV        float64      `json:"ev"`
}

// ResultTable is the per-subzone AQ/EV score table of one assessment run.
type ResultTable struct {
	DataType DataType    `json:"data_type"`
	Rows     []ResultRow `json:"rows"`
}

// EVBySubzone returns the EV column keyed by subzone identifier.
func (t *ResultTable) EVBySubzone() map[string]float64 {
	out := make(map[string]float64, len(t.Rows))
	for _, row := range t.Rows {
		out[row.SubzoneID] = row.EV
	}
	return out
}

// Clone returns a deep copy of the table, used by snapshot-on-save.
func (t *ResultTable) Clone() *ResultTable {
	if t == nil {
		return nil
	}
	clone := &ResultTable{DataType: t.DataType, Rows: make([]ResultRow, len(t.Rows))}
	for i, row := range t.Rows {
		scores := make(map[AQ]Score, len(row.Scores))
		for aq, s := range row.Scores {
			scores[aq] = s
		}
		clone.Rows[i] = ResultRow{SubzoneID: row.SubzoneID, Scores: scores, EV: row.EV}
	}
	return clone
}

// PipelineTables bundles the rescaled inputs the AQ engine reads.
type PipelineTables struct {
	Qualitative   *RescaledDataset
	Quantitative  *RescaledDataset
	Concentration *RescaledDataset
}

func (p PipelineTables) source(s SourceTable) *RescaledDataset {
	switch s {
	case SourceQuantitative:
		return p.Quantitative
	case SourceConcentration:
		return p.Concentration
	default:
		return p.Qualitative
	}
}

// ComputeAQs evaluates the fifteen Assessment Questions for every subzone.
//
// An AQ whose required data type does not match the declared type, or whose
// tag filter matches no feature, is not-applicable for every subzone.
// Otherwise each subzone's score is the mean of the matching features'
// values in the AQ's source table (missing treated as 0 upstream).  A
// failure inside one AQ's evaluation is recovered, logged, and resolved to
// a zero column without disturbing the other fourteen.
//
// EV is left at 0; callers apply ReduceEV on the returned table.
func ComputeAQs(d *Dataset, declared DataType, tables PipelineTables, cls Classification, log logging.Logger) *ResultTable {
	if log == nil {
		log = logging.NewNopLogger()
	}

	table := &ResultTable{DataType: declared, Rows: make([]ResultRow, d.NumSubzones())}
	for i, id := range d.SubzoneIDs() {
		table.Rows[i] = ResultRow{SubzoneID: id, Scores: make(map[AQ]Score, 15)}
	}

	for _, def := range Definitions() {
		scores := evaluateAQ(d, declared, def, tables, cls, log)
		for i := range table.Rows {
			table.Rows[i].Scores[def.ID] = scores[i]
		}
	}
	return table
}

// evaluateAQ computes one AQ column.  The recover guard honours the failure
// isolation requirement: no single AQ may abort the others.
func evaluateAQ(d *Dataset, declared DataType, def AQDefinition, tables PipelineTables, cls Classification, log logging.Logger) (scores []Score) {
	n := d.NumSubzones()
	scores = make([]Score, n)

	defer func() {
		if r := recover(); r != nil {
			log.Error("assessment question evaluation failed, scoring zero",
				logging.String("aq", string(def.ID)),
				logging.Any("panic", r))
			for i := range scores {
				scores[i] = ApplicableScore(0)
			}
		}
	}()

	if declared != def.DataType {
		for i := range scores {
			scores[i] = NotApplicable()
		}
		return scores
	}

	var matching []string
	if def.Filter == "" {
		matching = d.Features()
	} else {
		matching = cls.FeaturesWith(def.Filter, d.Features())
	}
	if len(matching) == 0 {
		for i := range scores {
			scores[i] = NotApplicable()
		}
		return scores
	}

	src := tables.source(def.Source)
	if src == nil {
		panic(fmt.Sprintf("source table %d not provided", def.Source))
	}

	for i := 0; i < n; i++ {
		var sum float64
		for _, f := range matching {
			v := src.Value(i, f)
			if !math.IsNaN(v) {
				sum += v
			}
		}
		mean := sum / float64(len(matching))
		if math.IsNaN(mean) {
			mean = 0
		}
		scores[i] = ApplicableScore(mean)
	}
	return scores
}
