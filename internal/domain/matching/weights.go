package matching

// MatchWeights collects every scoring weight and decision threshold used by
// the matchers. The numbers are calibration parameters, not constants with a
// derivation: they were tuned so that any single strong signal (exact
// national ID, exact name) alone clears the inclusion threshold while weak
// signals such as partial token overlap only matter when corroborated.
type MatchWeights struct {
	// Heuristic matcher weights.
	ExactNameWeight         float64 `json:"exact_name_weight"`
	NameSimilarityThreshold float64 `json:"name_similarity_threshold"`
	NameSimilarityWeight    float64 `json:"name_similarity_weight"`
	WordMatchWeight         float64 `json:"word_match_weight"`
	ExactIDWeight           float64 `json:"exact_id_weight"`
	DateWeight              float64 `json:"date_weight"`
	DateSimilarityThreshold float64 `json:"date_similarity_threshold"`

	// Primary matcher weights (normalized, sum to 1).
	PrimaryNameWeight float64 `json:"primary_name_weight"`
	PrimaryIDWeight   float64 `json:"primary_id_weight"`
	PrimaryDateWeight float64 `json:"primary_date_weight"`

	// Decision thresholds shared by both matchers.
	CandidateInclusionThreshold float64 `json:"candidate_inclusion_threshold"`
	AutoAcceptThreshold         float64 `json:"auto_accept_threshold"`
}

// DefaultMatchWeights returns the calibrated defaults.
func DefaultMatchWeights() MatchWeights {
	return MatchWeights{
		ExactNameWeight:         0.8,
		NameSimilarityThreshold: 0.6,
		NameSimilarityWeight:    0.7,
		WordMatchWeight:         0.5,
		ExactIDWeight:           0.9,
		DateWeight:              0.3,
		DateSimilarityThreshold: 0.8,

		PrimaryNameWeight: 0.45,
		PrimaryIDWeight:   0.35,
		PrimaryDateWeight: 0.20,

		CandidateInclusionThreshold: 0.4,
		AutoAcceptThreshold:         0.25,
	}
}
