// Package eva defines the wire-level types shared by the HTTP API, the CLI,
// and external consumers of assessment results.  These DTOs carry
// already-validated data across the engine boundary; parsing raw survey
// files into this shape is the job of an external ingestion layer.
package eva

import "time"

// DatasetDTO is the wire form of a survey dataset: an ordered list of
// subzone rows over a shared set of feature columns.  A feature absent from
// a row's Values map is a missing observation, which is distinct from an
// observed zero.
type DatasetDTO struct {
	Subzones []SubzoneRow `json:"subzones"`
	Features []string     `json:"features"`
}

// SubzoneRow is one spatial survey unit and its per-feature observations.
type SubzoneRow struct {
	SubzoneID string             `json:"subzone_id"`
	Values    map[string]float64 `json:"values"`
}

// AssessmentRequest is the input to a full AQ/EV assessment run.
type AssessmentRequest struct {
	// DataType declares the observation semantics: "qualitative" or
	// "quantitative".  Empty means auto-detect.
	DataType string `json:"data_type,omitempty"`

	Dataset DatasetDTO `json:"dataset"`

	// Classifications maps feature names to user-assigned tags
	// (RRF/NRF/ESF/HFS_BH/SS).  LRF/ROF are derived and may not appear.
	Classifications map[string][]string `json:"classifications,omitempty"`

	// RarityThreshold overrides the locally-rare occurrence proportion
	// (default 0.05).
	RarityThreshold float64 `json:"rarity_threshold,omitempty"`

	// ConcentrationPercentile overrides the AQ9 percentile (default 95).
	ConcentrationPercentile float64 `json:"concentration_percentile,omitempty"`
}

// AQCell is one score cell: Value is meaningless when Applicable is false.
type AQCell struct {
	Value      float64 `json:"value"`
	Applicable bool    `json:"applicable"`
}

// ResultRowDTO is the per-subzone output row: fifteen AQ scores plus EV.
type ResultRowDTO struct {
	SubzoneID string            `json:"subzone_id"`
	Scores    map[string]AQCell `json:"scores"`
	EV        float64           `json:"ev"`
}

// AQStatusDTO reports whether an AQ participated in a run.
type AQStatusDTO struct {
	Active bool   `json:"active"`
	Reason string `json:"reason"`
}

// AssessmentResponse is the output envelope of an assessment run.
type AssessmentResponse struct {
	DataType         string                 `json:"data_type"`
	DetectedDataType string                 `json:"detected_data_type"`
	FeatureCount     int                    `json:"feature_count"`
	Rows             []ResultRowDTO         `json:"rows"`
	AQStatus         map[string]AQStatusDTO `json:"aq_status"`
	Cached           bool                   `json:"cached"`
	ComputedAt       time.Time              `json:"computed_at"`
}

// SaveComponentRequest saves the supplied assessment run under a name.
type SaveComponentRequest struct {
	Assessment AssessmentRequest `json:"assessment"`

	// Overwrite permits replacing an existing component of the same name.
	Overwrite bool `json:"overwrite,omitempty"`
}

// ComponentSummary describes one saved ecosystem component.
type ComponentSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	DataType     string    `json:"data_type"`
	FeatureCount int       `json:"feature_count"`
	SubzoneCount int       `json:"subzone_count"`
	SavedAt      time.Time `json:"saved_at"`
}

// ComponentDetail is a saved component with its full result table.
type ComponentDetail struct {
	ComponentSummary
	Rows []ResultRowDTO `json:"rows"`
}

// AggregateRow is one subzone of the cross-component aggregation: the EV
// contributed by each component plus their sum.
type AggregateRow struct {
	SubzoneID    string             `json:"subzone_id"`
	ComponentEVs map[string]float64 `json:"component_evs"`
	TotalEV      float64            `json:"total_ev"`
}

// AggregateSummary carries the headline statistics of a Total EV table.
type AggregateSummary struct {
	Sum  float64 `json:"sum"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
}

// AggregateResponse is the cross-component Total EV table.
type AggregateResponse struct {
	Components []string         `json:"components"`
	Rows       []AggregateRow   `json:"rows"`
	Summary    AggregateSummary `json:"summary"`
}

// AQMethodologyEntry is the reference metadata for one Assessment Question.
type AQMethodologyEntry struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	DataType          string `json:"data_type"`
	NotApplicableWhen string `json:"not_applicable_when"`
}
