package assessment

import "math"

// ReduceEV fills the EV column of the table in place: for each subzone, EV
// is the maximum over the data-type-appropriate AQ subset of the values
// that are both applicable and non-zero, or 0 when none qualify.
//
// EV is deliberately a max-reduction rather than a mean or sum: a single
// strongly scoring criterion (e.g. a nationally rare feature) should
// dominate the subzone's value, not be diluted by many near-zero criteria.
func ReduceEV(table *ResultTable) {
	var subset []AQ
	switch table.DataType {
	case Qualitative:
		subset = QualitativeAQs()
	case Quantitative:
		subset = QuantitativeAQs()
	default:
		for i := range table.Rows {
			table.Rows[i].EV = 0
		}
		return
	}

	for i := range table.Rows {
		ev := 0.0
		for _, aq := range subset {
			s := table.Rows[i].Scores[aq]
			if s.Applicable && s.Value != 0 && !math.IsNaN(s.Value) {
				ev = math.Max(ev, s.Value)
			}
		}
		table.Rows[i].EV = ev
	}
}
