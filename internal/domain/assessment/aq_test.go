package assessment

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runPipeline executes the full engine over the dataset for tests.
func runPipeline(t *testing.T, ds *Dataset, declared DataType, user UserTags) (*ResultTable, Classification) {
	t.Helper()
	cls := ClassifyFeatures(ds, user, DefaultRarityThreshold)
	tables := PipelineTables{
		Qualitative:   RescaleQualitative(ds),
		Quantitative:  RescaleQuantitative(ds),
		Concentration: ConcentrationWeight(ds, cls, DefaultConcentrationPercentile),
	}
	table := ComputeAQs(ds, declared, tables, cls, nil)
	ReduceEV(table)
	return table, cls
}

func TestComputeAQs_WrongDataTypeIsNotApplicable(t *testing.T) {
	t.Parallel()

	ds := newTestDataset(t, []string{"S1", "S2"}, []string{"a"}, map[string][]float64{
		"a": {1, 0},
	})
	table, _ := runPipeline(t, ds, Qualitative, nil)

	for _, aq := range QuantitativeAQs() {
		for _, row := range table.Rows {
			assert.False(t, row.Scores[aq].Applicable, "%s should be NA on qualitative run", aq)
		}
	}
}

func TestComputeAQs_AQ7AlwaysActiveForQualitative(t *testing.T) {
	t.Parallel()

	// No user tags at all; AQ7 still averages every feature.
	ds := newTestDataset(t, []string{"S1", "S2"}, []string{"a", "b"}, map[string][]float64{
		"a": {1, 0},
		"b": {1, 1},
	})
	table, _ := runPipeline(t, ds, Qualitative, nil)

	s1 := table.Rows[0].Scores[AQ7]
	require.True(t, s1.Applicable)
	assert.InDelta(t, 5, s1.Value, 1e-12) // (5+5)/2

	s2 := table.Rows[1].Scores[AQ7]
	require.True(t, s2.Applicable)
	assert.InDelta(t, 2.5, s2.Value, 1e-12) // (0+5)/2
}

func TestComputeAQs_NoMatchingFeaturesIsNotApplicable(t *testing.T) {
	t.Parallel()

	// Qualitative run with no user classifications: AQ3/5/10/12/14 are NA,
	// AQ1 and AQ7 remain computed, EV = max(AQ1, AQ7).
	ids := make([]string, 20)
	rare := make([]float64, 20)
	common := make([]float64, 20)
	for i := range ids {
		ids[i] = string(rune('A' + i))
		common[i] = 1
	}
	rare[3] = 1

	ds := newTestDataset(t, ids, []string{"rare", "common"}, map[string][]float64{
		"rare":   rare,
		"common": common,
	})
	table, cls := runPipeline(t, ds, Qualitative, nil)

	require.Equal(t, 1, cls[TagLRF]["rare"])

	for _, row := range table.Rows {
		for _, aq := range []AQ{AQ3, AQ5, AQ10, AQ12, AQ14} {
			assert.False(t, row.Scores[aq].Applicable, "%s row %s", aq, row.SubzoneID)
		}
		require.True(t, row.Scores[AQ1].Applicable)
		require.True(t, row.Scores[AQ7].Applicable)
		want := math.Max(row.Scores[AQ1].Value, row.Scores[AQ7].Value)
		assert.InDelta(t, want, row.EV, 1e-12, "row %s", row.SubzoneID)
	}
}

func TestComputeAQs_AveragesOverMatchingFeaturesOnly(t *testing.T) {
	t.Parallel()

	ds := newTestDataset(t, []string{"S1", "S2"}, []string{"coral", "cod"}, map[string][]float64{
		"coral": {1, 0},
		"cod":   {0, 1},
	})
	user := UserTags{"coral": {TagESF}}
	table, _ := runPipeline(t, ds, Qualitative, user)

	// AQ10 (ESF, qualitative) sees only the coral column.
	require.True(t, table.Rows[0].Scores[AQ10].Applicable)
	assert.InDelta(t, 5, table.Rows[0].Scores[AQ10].Value, 1e-12)
	assert.InDelta(t, 0, table.Rows[1].Scores[AQ10].Value, 1e-12)
}

func TestComputeAQs_ZeroRangeFeatureContributesZero(t *testing.T) {
	t.Parallel()

	// A quantitative column with identical value 3 everywhere rescales to
	// all zeros, so every AQ that includes it averages in a zero.
	ds := newTestDataset(t, []string{"S1", "S2", "S3"}, []string{"flat"}, map[string][]float64{
		"flat": {3, 3, 3},
	})
	table, _ := runPipeline(t, ds, Quantitative, nil)

	for _, row := range table.Rows {
		s := row.Scores[AQ8]
		require.True(t, s.Applicable)
		assert.Zero(t, s.Value)
		assert.Zero(t, row.EV)
	}
}

func TestComputeAQs_Idempotent(t *testing.T) {
	t.Parallel()

	ds := newTestDataset(t, []string{"S1", "S2", "S3"}, []string{"a", "b"}, map[string][]float64{
		"a": {1.5, 0, 6},
		"b": {2, 2, 9},
	})
	user := UserTags{"a": {TagRRF}, "b": {TagSS}}

	first, _ := runPipeline(t, ds, Quantitative, user)
	second, _ := runPipeline(t, ds, Quantitative, user)
	assert.Equal(t, first, second)
}

func TestComputeAQs_ScoresBounded(t *testing.T) {
	t.Parallel()

	ds := newTestDataset(t, []string{"S1", "S2", "S3", "S4"}, []string{"a", "b", "c"}, map[string][]float64{
		"a": {0, 10, 3, math.NaN()},
		"b": {5, 5, 5, 5},
		"c": {0, 0, 2, 40},
	})
	user := UserTags{"a": {TagESF}, "c": {TagRRF, TagNRF}}
	table, _ := runPipeline(t, ds, Quantitative, user)

	for _, row := range table.Rows {
		for aq, s := range row.Scores {
			if !s.Applicable {
				continue
			}
			assert.False(t, math.IsNaN(s.Value), "%s %s", aq, row.SubzoneID)
			assert.GreaterOrEqual(t, s.Value, 0.0, "%s %s", aq, row.SubzoneID)
			assert.LessOrEqual(t, s.Value, MaxEVScale, "%s %s", aq, row.SubzoneID)
		}
		assert.GreaterOrEqual(t, row.EV, 0.0)
		assert.LessOrEqual(t, row.EV, MaxEVScale)
	}
}

func TestScore_JSONRoundTrip(t *testing.T) {
	t.Parallel()

	applicable, err := json.Marshal(ApplicableScore(2.5))
	require.NoError(t, err)
	assert.Equal(t, "2.5", string(applicable))

	na, err := json.Marshal(NotApplicable())
	require.NoError(t, err)
	assert.Equal(t, "null", string(na))

	var s Score
	require.NoError(t, json.Unmarshal([]byte("null"), &s))
	assert.False(t, s.Applicable)
	require.NoError(t, json.Unmarshal([]byte("3.25"), &s))
	assert.True(t, s.Applicable)
	assert.Equal(t, 3.25, s.Value)
}

func TestResultTable_CloneIsDeep(t *testing.T) {
	t.Parallel()

	ds := newTestDataset(t, []string{"S1"}, []string{"a"}, map[string][]float64{"a": {1}})
	table, _ := runPipeline(t, ds, Qualitative, nil)

	clone := table.Clone()
	table.Rows[0].Scores[AQ1] = ApplicableScore(99)
	table.Rows[0].EV = 99

	assert.NotEqual(t, 99.0, clone.Rows[0].Scores[AQ1].Value)
	assert.NotEqual(t, 99.0, clone.Rows[0].EV)
}

func TestStatusReport(t *testing.T) {
	t.Parallel()

	ds := newTestDataset(t, []string{"S1", "S2"}, []string{"a"}, map[string][]float64{"a": {1, 1}})
	cls := ClassifyFeatures(ds, UserTags{"a": {TagESF}}, DefaultRarityThreshold)

	report := StatusReport(Qualitative, cls)
	require.Len(t, report, 15)

	assert.True(t, report[AQ7].Active)
	assert.True(t, report[AQ10].Active)
	assert.False(t, report[AQ2].Active)
	assert.Equal(t, "Quantitative data required", report[AQ2].Reason)
	assert.False(t, report[AQ3].Active)
	assert.Equal(t, "No features classified as RRF", report[AQ3].Reason)
	// "a" occurs in 100% of subzones, so no LRF exists.
	assert.False(t, report[AQ1].Active)
}

func TestMethodology_CoversAllAQs(t *testing.T) {
	t.Parallel()

	infos := Methodology()
	require.Len(t, infos, 15)
	seen := make(map[AQ]bool)
	for _, info := range infos {
		seen[info.ID] = true
		assert.NotEmpty(t, info.Name)
		assert.NotEmpty(t, info.Description)
	}
	for _, aq := range AllAQs() {
		assert.True(t, seen[aq], "missing methodology for %s", aq)
	}
}
