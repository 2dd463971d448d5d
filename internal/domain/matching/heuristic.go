package matching

import (
	"context"
	"sort"
	"strings"

	"github.com/medintake/medintake/internal/platform/extract"
	"github.com/medintake/medintake/internal/platform/textmatch"
)

// HeuristicMatcher is the fallback scorer: accumulated additive rules over
// name, national ID and birth date. Signals accumulate rather than average so
// a single strong hit carries a record over the inclusion threshold on its
// own while weak hits need corroboration.
type HeuristicMatcher struct {
	weights MatchWeights
}

// NewHeuristicMatcher creates a heuristic matcher with the given weights.
func NewHeuristicMatcher(weights MatchWeights) *HeuristicMatcher {
	return &HeuristicMatcher{weights: weights}
}

// Match scores every registry record against the extracted info and returns
// the candidates above the inclusion threshold, ranked.
func (m *HeuristicMatcher) Match(_ context.Context, info extract.PatientInfo, registry []RegistryRecord) (Result, error) {
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

func (m *HeuristicMatcher) scoreRecord(info extract.PatientInfo, rec RegistryRecord) (float64, []string) {
	var score float64
	var reasons []string

	if info.Name != "" && rec.FullName != "" {
		if strings.EqualFold(info.Name, rec.FullName) {
			score += m.weights.ExactNameWeight
			reasons = append(reasons, ReasonExactName)
		} else if sim := textmatch.StringSimilarity(info.Name, rec.FullName); sim > m.weights.NameSimilarityThreshold {
			score += sim * m.weights.NameSimilarityWeight
			reasons = append(reasons, ReasonNameSimilarity)
		}

		if overlap := tokenOverlap(info.Name, rec.FullName); overlap > 0 {
			score += overlap * m.weights.WordMatchWeight
			reasons = append(reasons, ReasonWordMatch)
		}
	}

	if info.NationalID != "" && info.NationalID == rec.NationalID {
		score += m.weights.ExactIDWeight
		reasons = append(reasons, ReasonNationalID)
	}

	if info.BirthDate != "" && rec.BirthDate != "" {
		if dateSim := textmatch.DateSimilarity(info.BirthDate, rec.BirthDate); dateSim > m.weights.DateSimilarityThreshold {
			score += dateSim * m.weights.DateWeight
			reasons = append(reasons, ReasonBirthDate)
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, reasons
}

// tokenOverlap splits both names on whitespace, keeps tokens longer than two
// runes, and counts extracted tokens that contain or are contained in a
// candidate token. Returns matched / extracted as a fraction, 0 when nothing
// overlaps.
func tokenOverlap(extracted, candidate string) float64 {
	extractedTokens := meaningfulTokens(extracted)
	candidateTokens := meaningfulTokens(candidate)
	if len(extractedTokens) == 0 || len(candidateTokens) == 0 {
		return 0
	}

	matched := 0
	for _, et := range extractedTokens {
		for _, ct := range candidateTokens {
			if strings.Contains(ct, et) || strings.Contains(et, ct) {
				matched++
				break
			}
		}
	}
	if matched == 0 {
		return 0
	}
	return float64(matched) / float64(len(extractedTokens))
}

func meaningfulTokens(name string) []string {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		if len([]rune(tok)) > 2 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// rankCandidates sorts descending by score with a stable sort so score ties
// preserve registry insertion order.
func rankCandidates(candidates []Candidate) Result {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	result := Result{Candidates: candidates}
	if len(candidates) > 0 {
		result.TopScore = candidates[0].Score
	}
	return result
}
