package assessment

// AQInfo is the methodology reference for one Assessment Question, exposed
// to export and display layers.
type AQInfo struct {
	ID                AQ       `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	DataType          DataType `json:"data_type"`
	NotApplicableWhen string   `json:"not_applicable_when"`
}

// Methodology returns the reference metadata for all fifteen Assessment
// Questions in canonical order.
func Methodology() []AQInfo {
	return []AQInfo{
		{AQ1, "Locally Rare Features (LRF) - Qualitative", "Features present in ≤5% of subzones", Qualitative, "No locally rare features"},
		{AQ2, "Locally Rare Features (LRF) - Quantitative", "Abundance of features in ≤5% of subzones", Quantitative, "Qualitative data or no LRF"},
		{AQ3, "Regionally Rare Features (RRF) - Qualitative", "User-defined regionally rare features", Qualitative, "No RRF defined"},
		{AQ4, "Regionally Rare Features (RRF) - Quantitative", "Abundance of regionally rare features", Quantitative, "Qualitative data or no RRF"},
		{AQ5, "Nationally Rare Features (NRF) - Qualitative", "User-defined nationally rare features", Qualitative, "No NRF defined"},
		{AQ6, "Nationally Rare Features (NRF) - Quantitative", "Abundance of nationally rare features", Quantitative, "Qualitative data or no NRF"},
		{AQ7, "All Features - Qualitative", "All features without filter (baseline assessment)", Qualitative, "Never (always active for qualitative)"},
		{AQ8, "Regularly Occurring Features (ROF) - Quantitative", "Features present in >5% of subzones", Quantitative, "Qualitative data"},
		{AQ9, "ROF Concentration-Weighted - Quantitative", "Spatially concentrated regularly occurring features", Quantitative, "Qualitative data"},
		{AQ10, "Ecologically Significant Features (ESF) - Qualitative", "Keystone species and ecosystem engineers", Qualitative, "No ESF defined"},
		{AQ11, "Ecologically Significant Features (ESF) - Quantitative", "Abundance of ecologically significant features", Quantitative, "Qualitative data or no ESF"},
		{AQ12, "Habitat Forming Species/Biogenic Habitat - Qualitative", "Corals, seagrasses, habitat-creating species", Qualitative, "No HFS/BH defined"},
		{AQ13, "Habitat Forming Species/Biogenic Habitat - Quantitative", "Extent of habitat-forming features", Quantitative, "Qualitative data or no HFS/BH"},
		{AQ14, "Symbiotic Species (SS) - Qualitative", "Species in symbiotic relationships", Qualitative, "No SS defined"},
		{AQ15, "Symbiotic Species (SS) - Quantitative", "Abundance of symbiotic species", Quantitative, "Qualitative data or no SS"},
	}
}

// AQStatus describes whether an Assessment Question participates in a run
// and, when inactive, why.
type AQStatus struct {
	Active bool   `json:"active"`
	Reason string `json:"reason"`
}

// StatusReport analyzes each AQ against the declared data type and the
// classification and returns an activity report, so consumers can explain
// not-applicable columns without re-deriving the rules.
func StatusReport(declared DataType, cls Classification) map[AQ]AQStatus {
	report := make(map[AQ]AQStatus, 15)
	for _, def := range Definitions() {
		switch {
		case declared != def.DataType && def.DataType == Quantitative:
			report[def.ID] = AQStatus{Active: false, Reason: "Quantitative data required"}
		case declared != def.DataType && def.DataType == Qualitative:
			report[def.ID] = AQStatus{Active: false, Reason: "Qualitative data required"}
		case def.Filter != "" && !cls.AnyWith(def.Filter):
			report[def.ID] = AQStatus{Active: false, Reason: "No features classified as " + string(def.Filter)}
		default:
			report[def.ID] = AQStatus{Active: true, Reason: "Active"}
		}
	}
	return report
}
