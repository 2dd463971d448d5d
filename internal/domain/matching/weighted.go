package matching

import (
	"context"
	"math"

	"github.com/medintake/medintake/internal/platform/extract"
	"github.com/medintake/medintake/internal/platform/textmatch"
)

// WeightedMatcher is the primary scorer: a normalized weighted sum over name
// similarity, exact national-ID equality and birth-date equality. Unlike the
// additive heuristic its weights sum to one, so scores are directly
// comparable across records regardless of how many fields were extracted.
type WeightedMatcher struct {
	weights MatchWeights
}

// NewWeightedMatcher creates a weighted matcher with the given weights.
func NewWeightedMatcher(weights MatchWeights) *WeightedMatcher {
	return &WeightedMatcher{weights: weights}
}

// Match scores every registry record and returns the ranked candidates above
// the inclusion threshold.
func (m *WeightedMatcher) Match(_ context.Context, info extract.PatientInfo, registry []RegistryRecord) (Result, error) {
	var candidates []Candidate

	for _, rec := range registry {
		score, reasons := m.scoreRecord(info, rec)
		if score <= m.weights.CandidateInclusionThreshold {
			continue
		}
		candidates = append(candidates, Candidate{
			PatientID:        rec.PatientID,
			DisplayName:      rec.FullName,
			MaskedNationalID: MaskNationalID(rec.NationalID),
			Score:            score,
			MatchReasons:     reasons,
		})
	}

	return rankCandidates(candidates), nil
}

func (m *WeightedMatcher) scoreRecord(info extract.PatientInfo, rec RegistryRecord) (float64, []string) {
	var score float64
	var reasons []string

	if info.Name != "" && rec.FullName != "" {
		sim := textmatch.StringSimilarity(info.Name, rec.FullName)
		if sim >= 1.0 {
			reasons = append(reasons, ReasonExactName)
		} else if sim > m.weights.NameSimilarityThreshold {
			reasons = append(reasons, ReasonNameSimilarity)
		} else {
			sim = 0
		}
		score += sim * m.weights.PrimaryNameWeight
	}

	if info.NationalID != "" && info.NationalID == rec.NationalID {
		score += m.weights.PrimaryIDWeight
		reasons = append(reasons, ReasonNationalID)
	}

	if info.BirthDate != "" && rec.BirthDate != "" {
		if textmatch.DateSimilarity(info.BirthDate, rec.BirthDate) > m.weights.DateSimilarityThreshold {
			score += m.weights.PrimaryDateWeight
			reasons = append(reasons, ReasonBirthDate)
		}
	}

	// Round to keep scores stable across floating-point noise.
	return math.Round(score*1000) / 1000, reasons
}
