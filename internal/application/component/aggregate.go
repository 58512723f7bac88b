package component

import (
	"context"
	"sort"

	"github.com/razinkele/marbefes-eva-app/pkg/errors"
	"github.com/razinkele/marbefes-eva-app/pkg/types/eva"
)

// Aggregate joins the EV columns of the selected components over the union
// of their subzones and sums them into Total EV.  A subzone missing from a
// component contributes zero for it.
func (s *store) Aggregate(ctx context.Context, names ...string) (*eva.AggregateResponse, error) {
	records, err := s.selectRecords(names)
	if err != nil {
		return nil, err
	}

	componentNames := make([]string, len(records))
	for i, r := range records {
		componentNames[i] = r.Name
	}

	// Union of subzones, in first-appearance order across components.
	var subzones []string
	seen := make(map[string]bool)
	evByComponent := make(map[string]map[string]float64, len(records))
	for _, r := range records {
		evs := r.Table.EVBySubzone()
		evByComponent[r.Name] = evs
		for _, id := range r.Dataset.SubzoneIDs() {
			if !seen[id] {
				seen[id] = true
				subzones = append(subzones, id)
			}
		}
	}

	rows := make([]eva.AggregateRow, len(subzones))
	for i, id := range subzones {
		componentEVs := make(map[string]float64, len(records))
		total := 0.0
		for _, r := range records {
			ev := evByComponent[r.Name][id] // absent subzone contributes 0
			componentEVs[r.Name] = ev
			total += ev
		}
		rows[i] = eva.AggregateRow{SubzoneID: id, ComponentEVs: componentEVs, TotalEV: total}
	}

	s.metrics.IncAggregations()
	return &eva.AggregateResponse{
		Components: componentNames,
		Rows:       rows,
		Summary:    summarizeTotals(rows),
	}, nil
}

// selectRecords resolves the requested component names, or all saved
// components when none are named, as snapshots ordered by name.
func (s *store) selectRecords(names []string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []*Record
	if len(names) == 0 {
		for _, r := range s.byName {
			records = append(records, r)
		}
		sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })
	} else {
		// De-duplicate on the resolved record: the same component may be
		// named more than once (or by both id and name) and must only be
		// summed once.
		picked := make(map[string]bool, len(names))
		for _, name := range names {
			r := s.lookupLocked(name)
			if r == nil {
				return nil, errors.Newf(errors.CodeComponentNotFound, "component %q not found", name)
			}
			if picked[r.ID] {
				continue
			}
			picked[r.ID] = true
			records = append(records, r)
		}
	}
	if len(records) == 0 {
		return nil, errors.New(errors.CodeAggregationTooFewECs, "no saved components to aggregate")
	}
	return records, nil
}

func summarizeTotals(rows []eva.AggregateRow) eva.AggregateSummary {
	if len(rows) == 0 {
		return eva.AggregateSummary{}
	}
	summary := eva.AggregateSummary{
		Max: rows[0].TotalEV,
		Min: rows[0].TotalEV,
	}
	for _, row := range rows {
		summary.Sum += row.TotalEV
		if row.TotalEV > summary.Max {
			summary.Max = row.TotalEV
		}
		if row.TotalEV < summary.Min {
			summary.Min = row.TotalEV
		}
	}
	summary.Mean = summary.Sum / float64(len(rows))
	return summary
}
