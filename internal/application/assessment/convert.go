package assessment

import (
	domain "github.com/razinkele/marbefes-eva-app/internal/domain/assessment"
	"github.com/razinkele/marbefes-eva-app/pkg/errors"
	"github.com/razinkele/marbefes-eva-app/pkg/types/eva"
)

// datasetFromDTO converts the wire dataset into the columnar domain form.
// A feature absent from a row's Values map becomes a missing observation.
func datasetFromDTO(dto *eva.DatasetDTO) (*domain.Dataset, error) {
	if dto == nil || len(dto.Subzones) == 0 {
		return nil, errors.New(errors.CodeDatasetEmpty, "dataset has no subzones")
	}
	if len(dto.Features) == 0 {
		return nil, errors.New(errors.CodeDatasetEmpty, "dataset has no features")
	}

	ids := make([]string, len(dto.Subzones))
	for i, row := range dto.Subzones {
		ids[i] = row.SubzoneID
	}
	ds := domain.NewDataset(ids, dto.Features)
	for i, row := range dto.Subzones {
		for _, feature := range dto.Features {
			v, ok := row.Values[feature]
			if !ok {
				ds.Set(i, feature, domain.MissingObservation())
				continue
			}
			ds.Set(i, feature, domain.Obs(v))
		}
	}
	return ds, nil
}

// userTagsFromDTO converts and validates the user classification map.
func userTagsFromDTO(raw map[string][]string) (domain.UserTags, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	tags := make(domain.UserTags, len(raw))
	for feature, names := range raw {
		list := make([]domain.Tag, len(names))
		for i, name := range names {
			list[i] = domain.Tag(name)
		}
		tags[feature] = list
	}
	if err := tags.Validate(); err != nil {
		return nil, err
	}
	return tags, nil
}

// responseFromDomain builds the wire envelope from pipeline output.
func responseFromDomain(in *preparedInput, cls domain.Classification, table *domain.ResultTable) *eva.AssessmentResponse {
	return &eva.AssessmentResponse{
		DataType:         string(in.dataType),
		DetectedDataType: string(in.detected),
		FeatureCount:     in.dataset.NumFeatures(),
		Rows:             rowsToDTO(table),
		AQStatus:         statusToDTO(domain.StatusReport(in.dataType, cls)),
	}
}

func rowsToDTO(table *domain.ResultTable) []eva.ResultRowDTO {
	rows := make([]eva.ResultRowDTO, len(table.Rows))
	for i, row := range table.Rows {
		scores := make(map[string]eva.AQCell, len(row.Scores))
		for aq, score := range row.Scores {
			scores[string(aq)] = eva.AQCell{Value: score.Value, Applicable: score.Applicable}
		}
		rows[i] = eva.ResultRowDTO{SubzoneID: row.SubzoneID, Scores: scores, EV: row.EV}
	}
	return rows
}

func statusToDTO(report map[domain.AQ]domain.AQStatus) map[string]eva.AQStatusDTO {
	out := make(map[string]eva.AQStatusDTO, len(report))
	for aq, st := range report {
		out[string(aq)] = eva.AQStatusDTO{Active: st.Active, Reason: st.Reason}
	}
	return out
}
