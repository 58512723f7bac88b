package assessment

import "github.com/razinkele/marbefes-eva-app/pkg/errors"

// Tag identifies a feature classification category.
type Tag string

const (
	// TagLRF marks locally rare features.  Computed from occurrence
	// statistics, never user-assigned.
	TagLRF Tag = "LRF"

	// TagROF marks regularly occurring features, the exact complement of
	// TagLRF.  Computed, never user-assigned.
	TagROF Tag = "ROF"

	// TagRRF marks regionally rare features (user-assigned).
	TagRRF Tag = "RRF"

	// TagNRF marks nationally rare features (user-assigned).
	TagNRF Tag = "NRF"

	// TagESF marks ecologically significant features such as keystone
	// species and ecosystem engineers (user-assigned).
	TagESF Tag = "ESF"

	// TagHFSBH marks habitat-forming species / biogenic habitats such as
	// corals and seagrasses (user-assigned).
	TagHFSBH Tag = "HFS_BH"

	// TagSS marks symbiotic species (user-assigned).
	TagSS Tag = "SS"
)

// UserAssignableTags returns the tags a user may assign to a feature, in
// canonical order.  LRF/ROF are excluded: they are derived from the data.
func UserAssignableTags() []Tag {
	return []Tag{TagRRF, TagNRF, TagESF, TagHFSBH, TagSS}
}

// AllTags returns every tag, computed and user-assigned, in canonical order.
func AllTags() []Tag {
	return []Tag{TagLRF, TagROF, TagRRF, TagNRF, TagESF, TagHFSBH, TagSS}
}

// UserTags is the user-supplied classification mapping: feature name to the
// set of tags the user has assigned it.  How collaborators populate it
// (checkboxes, bulk upload) is outside the engine's contract.
type UserTags map[string][]Tag

// Validate rejects user tag sets containing unknown or computed-only tags.
func (u UserTags) Validate() error {
	assignable := make(map[Tag]struct{})
	for _, t := range UserAssignableTags() {
		assignable[t] = struct{}{}
	}
	for feature, tags := range u {
		for _, t := range tags {
			if _, ok := assignable[t]; !ok {
				return errors.Newf(errors.CodeUnknownClassification,
					"tag %q is not user-assignable (feature %q)", t, feature)
			}
		}
	}
	return nil
}

// Classification maps each tag to a 0/1 membership indicator per feature.
// Invariant: for every feature f, LRF[f] + ROF[f] == 1.
type Classification map[Tag]map[string]int

// Has reports whether the feature carries the tag.
func (c Classification) Has(tag Tag, feature string) bool {
	return c[tag][feature] == 1
}

// FeaturesWith returns the features carrying the tag, in the order given.
func (c Classification) FeaturesWith(tag Tag, ordered []string) []string {
	var out []string
	for _, f := range ordered {
		if c.Has(tag, f) {
			out = append(out, f)
		}
	}
	return out
}

// AnyWith reports whether at least one feature carries the tag.
func (c Classification) AnyWith(tag Tag) bool {
	for _, v := range c[tag] {
		if v == 1 {
			return true
		}
	}
	return false
}

// Clone returns a deep copy, used by snapshot-on-save.
func (c Classification) Clone() Classification {
	clone := make(Classification, len(c))
	for tag, features := range c {
		m := make(map[string]int, len(features))
		for f, v := range features {
			m[f] = v
		}
		clone[tag] = m
	}
	return clone
}

// ClassifyFeatures derives the intrinsic LRF/ROF partition from occurrence
// statistics and merges the user-assigned tags.  rarityThreshold is the
// inclusive occurrence-proportion bound for local rarity; values <= 0 fall
// back to DefaultRarityThreshold.
//
// For each feature the occurrence proportion is count(value > 0) over
// count(observed).  A feature with no observations has proportion 0 and is
// therefore ROF: rarity requires evidence of presence, and LRF demands a
// strictly positive proportion.  The function is pure and total.
func ClassifyFeatures(d *Dataset, user UserTags, rarityThreshold float64) Classification {
	if rarityThreshold <= 0 {
		rarityThreshold = DefaultRarityThreshold
	}

	cls := make(Classification, len(AllTags()))
	for _, tag := range AllTags() {
		cls[tag] = make(map[string]int, d.NumFeatures())
	}

	for _, f := range d.features {
		positive, observed := 0, 0
		for _, obs := range d.Column(f) {
			if obs.Missing {
				continue
			}
			observed++
			if obs.Value > 0 {
				positive++
			}
		}

		proportion := 0.0
		if observed > 0 {
			proportion = float64(positive) / float64(observed)
		}

		lrf := 0
		if proportion > 0 && proportion <= rarityThreshold {
			lrf = 1
		}
		cls[TagLRF][f] = lrf
		cls[TagROF][f] = 1 - lrf

		assigned := make(map[Tag]struct{}, len(user[f]))
		for _, t := range user[f] {
			assigned[t] = struct{}{}
		}
		for _, t := range UserAssignableTags() {
			if _, ok := assigned[t]; ok {
				cls[t][f] = 1
			} else {
				cls[t][f] = 0
			}
		}
	}

	return cls
}
