package patients

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medintake/medintake/internal/domain/matching"
)

// Registry adapts the patient service to the read/create surface the
// document workflow consumes.
type Registry struct {
	svc *Service
}

func NewRegistry(svc *Service) *Registry {
	return &Registry{svc: svc}
}

func (r *Registry) Snapshot(ctx context.Context) ([]matching.RegistryRecord, error) {
	items, err := r.svc.RegistrySnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry snapshot: %w", err)
	}
	records := make([]matching.RegistryRecord, 0, len(items))
	for _, p := range items {
		records = append(records, matching.RegistryRecord{
			PatientID:  p.ID,
			FullName:   p.FullName,
			NationalID: p.NationalID,
			BirthDate:  p.BirthDateString(),
		})
	}
	return records, nil
}

func (r *Registry) CreatePatient(ctx context.Context, fullName, nationalID, birthDate string) (uuid.UUID, error) {
	p := &Patient{FullName: fullName, NationalID: nationalID}
	// Extracted dates arrive in whatever shape the document used.
	for _, layout := range []string{"2006-01-02", "02.01.2006", "02/01/2006", "02-01-2006"} {
		if t, err := time.Parse(layout, birthDate); err == nil {
			p.BirthDate = &t
			break
		}
	}
	if err := r.svc.CreatePatient(ctx, p); err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}
