package documents

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medintake/medintake/internal/domain/matching"
	"github.com/medintake/medintake/internal/platform/classify"
)

// MatchStatus is the resolution state of an ingested document.
type MatchStatus string

const (
	StatusUnmatched         MatchStatus = "unmatched"
	StatusCandidatesPending MatchStatus = "candidates_pending"
	StatusMatched           MatchStatus = "matched"
	StatusRejected          MatchStatus = "rejected"
)

// transitions lists the allowed status moves. Matched is terminal;
// Rejected can only re-enter the workflow through an explicit re-review.
var transitions = map[MatchStatus][]MatchStatus{
	StatusUnmatched:         {StatusCandidatesPending, StatusMatched, StatusRejected},
	StatusCandidatesPending: {StatusMatched, StatusRejected},
	StatusRejected:          {StatusCandidatesPending},
}

// CanTransition reports whether a document may move from one status to another.
func CanTransition(from, to MatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known match status.
func ValidStatus(s MatchStatus) bool {
	switch s {
	case StatusUnmatched, StatusCandidatesPending, StatusMatched, StatusRejected:
		return true
	}
	return false
}

// Document maps to the document table. It carries the raw text, the
// extraction and classification outcome, and the matching state.
type Document struct {
	ID                       uuid.UUID             `db:"id" json:"id"`
	RawText                  string                `db:"raw_text" json:"raw_text"`
	ExtractedName            string                `db:"extracted_name" json:"extracted_name,omitempty"`
	ExtractedNationalID      string                `db:"extracted_national_id" json:"-"`
	ExtractedBirthDate       string                `db:"extracted_birth_date" json:"extracted_birth_date,omitempty"`
	ExtractionConfidence     float64               `db:"extraction_confidence" json:"extraction_confidence"`
	DocumentType             classify.DocumentType `db:"document_type" json:"document_type"`
	ClassificationConfidence float64               `db:"classification_confidence" json:"classification_confidence"`
	MatchStatus              MatchStatus           `db:"match_status" json:"match_status"`
	MatchedPatientID         *uuid.UUID            `db:"matched_patient_id" json:"matched_patient_id,omitempty"`
	Candidates               []matching.Candidate  `db:"candidates" json:"candidates"`
	UploadedAt               time.Time             `db:"uploaded_at" json:"uploaded_at"`
	VersionID                int                   `db:"version_id" json:"version_id"`
	CreatedAt                time.Time             `db:"created_at" json:"created_at"`
	UpdatedAt                time.Time             `db:"updated_at" json:"updated_at"`
}

func (d *Document) GetVersionID() int  { return d.VersionID }
func (d *Document) SetVersionID(v int) { d.VersionID = v }

// setStatus moves the document to a new status and keeps the matched-patient
// and candidate fields consistent with it: MatchedPatientID is set only in
// Matched, candidates are carried only in CandidatesPending and Matched.
func (d *Document) setStatus(to MatchStatus, patientID *uuid.UUID) error {
	if to == d.MatchStatus {
		// Recomputation may rewrite candidates in place, but matched and
		// rejected are settled outcomes.
		if to == StatusMatched || to == StatusRejected {
			return fmt.Errorf("document is already %s", to)
		}
	} else if !CanTransition(d.MatchStatus, to) {
		return fmt.Errorf("invalid transition %s -> %s", d.MatchStatus, to)
	}
	d.MatchStatus = to
	switch to {
	case StatusMatched:
		d.MatchedPatientID = patientID
	case StatusUnmatched, StatusRejected:
		d.MatchedPatientID = nil
		d.Candidates = nil
	default:
		d.MatchedPatientID = nil
	}
	return nil
}
