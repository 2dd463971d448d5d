package patients

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var nationalIDPattern = regexp.MustCompile(`^[1-9][0-9]{10}$`)

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.NationalID != "" {
		if !nationalIDPattern.MatchString(p.NationalID) {
			return fmt.Errorf("national_id must be 11 digits")
		}
		if existing, err := s.repo.GetByNationalID(ctx, p.NationalID); err == nil && existing != nil {
			return fmt.Errorf("national_id already registered")
		}
	}
	p.Active = true
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.NationalID != "" && !nationalIDPattern.MatchString(p.NationalID) {
		return fmt.Errorf("national_id must be 11 digits")
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// RegistrySnapshot returns all active patients in insertion order for a
// matching run. Callers must treat the returned slice as read-only.
func (s *Service) RegistrySnapshot(ctx context.Context) ([]*Patient, error) {
	return s.repo.ListAll(ctx)
}
