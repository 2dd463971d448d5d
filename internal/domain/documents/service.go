package documents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medintake/medintake/internal/domain/matching"
	"github.com/medintake/medintake/internal/platform/classify"
	"github.com/medintake/medintake/internal/platform/db"
	"github.com/medintake/medintake/internal/platform/extract"
)

// Registry is the patient-registry surface the document workflow needs:
// a read-only snapshot for matching runs, and patient creation for the
// create_patient resolution action.
type Registry interface {
	Snapshot(ctx context.Context) ([]matching.RegistryRecord, error)
	CreatePatient(ctx context.Context, fullName, nationalID, birthDate string) (uuid.UUID, error)
}

type Service struct {
	repo       Repository
	registry   Registry
	matcher    *matching.Engine
	autoAccept float64
	batchSize  int
	logger     zerolog.Logger
}

func NewService(repo Repository, registry Registry, matcher *matching.Engine, autoAccept float64, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		registry:   registry,
		matcher:    matcher,
		autoAccept: autoAccept,
		batchSize:  4,
		logger:     logger,
	}
}

// IngestRequest is the ingestion contract for a single document.
type IngestRequest struct {
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	RawText    string     `json:"raw_text"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

// Ingest runs the full pipeline on one document: classify, extract,
// match against the current registry, persist the outcome. Pipeline
// stages fail open: a document that yields nothing is stored unmatched,
// never dropped.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (*Document, error) {
	if req.RawText == "" {
		return nil, fmt.Errorf("raw_text is required")
	}

	d := &Document{RawText: req.RawText, MatchStatus: StatusUnmatched}
	if req.DocumentID != nil {
		d.ID = *req.DocumentID
	}
	if req.UploadedAt != nil {
		d.UploadedAt = *req.UploadedAt
	} else {
		d.UploadedAt = time.Now().UTC()
	}

	s.runPipeline(ctx, d)

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("persist document: %w", err)
	}
	return d, nil
}

// BatchResult reports the outcome of one document in a batch ingest.
type BatchResult struct {
	Index    int       `json:"index"`
	Document *Document `json:"document,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// IngestBatch processes documents independently with bounded concurrency.
// One failing document never aborts the rest.
func (s *Service) IngestBatch(ctx context.Context, reqs []IngestRequest) []BatchResult {
	results := make([]BatchResult, len(reqs))
	sem := make(chan struct{}, s.batchSize)
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(i int, req IngestRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			d, err := s.Ingest(ctx, req)
			results[i] = BatchResult{Index: i, Document: d}
			if err != nil {
				s.logger.Warn().Int("index", i).Err(err).Msg("batch document failed")
				results[i].Error = err.Error()
			}
		}(i, req)
	}
	wg.Wait()
	return results
}

func (s *Service) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListDocuments(ctx context.Context, status MatchStatus, limit, offset int) ([]*Document, int, error) {
	if status != "" && !ValidStatus(status) {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

func (s *Service) GetCandidates(ctx context.Context, id uuid.UUID) ([]matching.Candidate, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.Candidates, nil
}

// Rematch re-runs classification, extraction and matching on a stored
// document, typically after the registry changed. It is idempotent on an
// unchanged registry and never moves a document backwards in the workflow:
// matched and rejected documents are left alone.
func (s *Service) Rematch(ctx context.Context, id uuid.UUID) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.MatchStatus == StatusMatched || d.MatchStatus == StatusRejected {
		return nil, fmt.Errorf("document is %s, rematch not allowed", d.MatchStatus)
	}
	s.runPipeline(ctx, d)
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Resolution actions.
const (
	ActionSelect        = "select"
	ActionReject        = "reject"
	ActionCreatePatient = "create_patient"
)

// Decision is the resolution surface: a reviewer's verdict on a document
// awaiting candidate selection.
type Decision struct {
	Action    string     `json:"action"`
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
}

// Resolve applies a reviewer decision. Selecting requires the chosen
// patient to be among the stored candidates.
func (s *Service) Resolve(ctx context.Context, id uuid.UUID, dec Decision) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.MatchStatus != StatusCandidatesPending {
		return nil, fmt.Errorf("document is %s, only documents awaiting review can be resolved", d.MatchStatus)
	}

	switch dec.Action {
	case ActionSelect:
		if dec.PatientID == nil {
			return nil, fmt.Errorf("patient_id is required for select")
		}
		if !hasCandidate(d.Candidates, *dec.PatientID) {
			return nil, fmt.Errorf("patient %s is not a candidate for this document", dec.PatientID)
		}
		if err := d.setStatus(StatusMatched, dec.PatientID); err != nil {
			return nil, err
		}
	case ActionReject:
		if err := d.setStatus(StatusRejected, nil); err != nil {
			return nil, err
		}
	case ActionCreatePatient:
		if err := s.createAndLink(ctx, d); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown action: %s", dec.Action)
	}

	if dec.Action != ActionCreatePatient {
		if err := s.repo.Update(ctx, d); err != nil {
			return nil, err
		}
	}
	s.logger.Info().
		Str("document_id", d.ID.String()).
		Str("action", dec.Action).
		Str("status", string(d.MatchStatus)).
		Msg("document resolved")
	return d, nil
}

// createAndLink registers a new patient from the extracted fields and links
// the document to it. Both writes share one transaction when a tenant
// connection is present, so a version conflict on the document never leaves
// an orphan patient behind.
func (s *Service) createAndLink(ctx context.Context, d *Document) error {
	if db.ConnFromContext(ctx) == nil {
		return s.createAndLinkWrites(ctx, d)
	}

	txCtx, tx, err := db.WithTx(ctx)
	if err != nil {
		return fmt.Errorf("begin resolution transaction: %w", err)
	}
	if err := s.createAndLinkWrites(txCtx, d); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit resolution: %w", err)
	}
	return nil
}

func (s *Service) createAndLinkWrites(ctx context.Context, d *Document) error {
	pid, err := s.registry.CreatePatient(ctx, d.ExtractedName, d.ExtractedNationalID, d.ExtractedBirthDate)
	if err != nil {
		return fmt.Errorf("create patient from document: %w", err)
	}
	if err := d.setStatus(StatusMatched, &pid); err != nil {
		return err
	}
	return s.repo.Update(ctx, d)
}

// ReReview moves a rejected document back into the workflow and re-runs
// matching against the current registry.
func (s *Service) ReReview(ctx context.Context, id uuid.UUID) (*Document, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.MatchStatus != StatusRejected {
		return nil, fmt.Errorf("document is %s, only rejected documents can be re-reviewed", d.MatchStatus)
	}
	if err := d.setStatus(StatusCandidatesPending, nil); err != nil {
		return nil, err
	}
	s.runPipeline(ctx, d)
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// runPipeline classifies, extracts and matches in place. Every stage is
// fail open: errors are logged with the failing stage and the document
// continues with whatever the earlier stages produced.
func (s *Service) runPipeline(ctx context.Context, d *Document) {
	cls := classify.Classify(d.RawText)
	d.DocumentType = cls.DocumentType
	d.ClassificationConfidence = cls.Confidence

	info := extract.PatientInfoFrom(d.RawText)
	d.ExtractedName = info.Name
	d.ExtractedNationalID = info.NationalID
	d.ExtractedBirthDate = info.BirthDate
	d.ExtractionConfidence = info.Confidence

	registry, err := s.registry.Snapshot(ctx)
	if err != nil {
		s.logger.Error().
			Str("document_id", d.ID.String()).
			Str("stage", "registry_snapshot").
			Err(err).
			Msg("pipeline stage failed")
		s.applyMatch(d, matching.Result{})
		return
	}

	result := s.matcher.Match(ctx, info, registry)
	s.applyMatch(d, result)
}

// applyMatch maps a match result onto the document status: a single
// candidate clearing the auto-accept threshold is matched outright, any
// other non-empty result awaits review, an empty result is unmatched.
// Recomputation never takes a transition the workflow forbids.
func (s *Service) applyMatch(d *Document, result matching.Result) {
	target := StatusUnmatched
	var patientID *uuid.UUID
	switch {
	case len(result.Candidates) == 1 && result.TopScore > s.autoAccept:
		target = StatusMatched
		pid := result.Candidates[0].PatientID
		patientID = &pid
	case len(result.Candidates) >= 1:
		target = StatusCandidatesPending
	}

	if target != d.MatchStatus && !CanTransition(d.MatchStatus, target) {
		// A pending document whose candidates evaporated stays pending
		// with an empty list rather than sliding back to unmatched.
		d.Candidates = result.Candidates
		return
	}
	if err := d.setStatus(target, patientID); err != nil {
		return
	}
	if target == StatusCandidatesPending || target == StatusMatched {
		d.Candidates = result.Candidates
	}
}

func hasCandidate(candidates []matching.Candidate, patientID uuid.UUID) bool {
	for _, c := range candidates {
		if c.PatientID == patientID {
			return true
		}
	}
	return false
}
