// Package matching ranks patient-registry records against the patient
// information extracted from a scanned document. Scoring is pure and
// deterministic over an immutable registry snapshot; the package never
// touches storage.
package matching

import (
	"strings"

	"github.com/google/uuid"
)

// RegistryRecord is a read-only view of one patient registry entry, decoupled
// from the patients domain model so the scorers depend only on the fields
// they compare.
type RegistryRecord struct {
	PatientID  uuid.UUID
	FullName   string
	NationalID string
	BirthDate  string // free-form, normalized during comparison
}

// Match reasons retained per candidate for human auditability. A reviewer
// should be able to see why a record was suggested, not just its score.
const (
	ReasonExactName      = "exact_name_match"
	ReasonNameSimilarity = "name_similarity"
	ReasonWordMatch      = "word_match"
	ReasonNationalID     = "tc_exact"
	ReasonBirthDate      = "birth_date"
)

// Candidate is one proposed patient match for a document.
type Candidate struct {
	PatientID        uuid.UUID `json:"patient_id"`
	DisplayName      string    `json:"display_name"`
	MaskedNationalID string    `json:"masked_national_id,omitempty"`
	Score            float64   `json:"score"`
	MatchReasons     []string  `json:"match_reasons"`
}

// Result is the ranked candidate list for one document. Candidates are sorted
// descending by score; ties keep registry order so repeated runs over the
// same snapshot reproduce the same ordering bit for bit.
type Result struct {
	Candidates []Candidate `json:"candidates"`
	TopScore   float64     `json:"top_score"`
}

// MaskNationalID hides the middle digits of a national ID for display,
// keeping the first three and last two so a reviewer can still sanity-check
// against paperwork without full exposure.
func MaskNationalID(id string) string {
	if len(id) < 6 {
		return strings.Repeat("*", len(id))
	}
	return id[:3] + strings.Repeat("*", len(id)-5) + id[len(id)-2:]
}
