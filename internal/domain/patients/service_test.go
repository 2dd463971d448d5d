package patients

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
	order    []uuid.UUID
	failNext error
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	m.patients[p.ID] = p
	m.order = append(m.order, p.ID)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("patient not found")
	}
	return p, nil
}

func (m *mockRepo) GetByNationalID(ctx context.Context, nationalID string) (*Patient, error) {
	for _, id := range m.order {
		p := m.patients[id]
		if p.NationalID == nationalID {
			return p, nil
		}
	}
	return nil, fmt.Errorf("patient not found")
}

func (m *mockRepo) Update(ctx context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return fmt.Errorf("patient not found")
	}
	p.UpdatedAt = time.Now()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	p, ok := m.patients[id]
	if !ok {
		return fmt.Errorf("patient not found")
	}
	p.Active = false
	return nil
}

func (m *mockRepo) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	all := make([]*Patient, 0, len(m.order))
	for _, id := range m.order {
		all = append(all, m.patients[id])
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) ListAll(ctx context.Context) ([]*Patient, error) {
	var active []*Patient
	for _, id := range m.order {
		if p := m.patients[id]; p.Active {
			active = append(active, p)
		}
	}
	return active, nil
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())

	p := &Patient{FullName: "Ahmet Yılmaz", NationalID: "12345678901"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if !p.Active {
		t.Error("expected new patient to be active")
	}
}

func TestCreatePatient_RequiresName(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.CreatePatient(context.Background(), &Patient{FullName: "   "}); err == nil {
		t.Error("expected error for blank name")
	}
}

func TestCreatePatient_InvalidNationalID(t *testing.T) {
	svc := NewService(newMockRepo())

	cases := []string{"123", "01234567890", "1234567890a", "123456789012"}
	for _, id := range cases {
		err := svc.CreatePatient(context.Background(), &Patient{FullName: "Ayşe Demir", NationalID: id})
		if err == nil {
			t.Errorf("expected error for national id %q", id)
		}
	}
}

func TestCreatePatient_DuplicateNationalID(t *testing.T) {
	svc := NewService(newMockRepo())

	first := &Patient{FullName: "Ahmet Yılmaz", NationalID: "12345678901"}
	if err := svc.CreatePatient(context.Background(), first); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}
	err := svc.CreatePatient(context.Background(), &Patient{FullName: "Mehmet Kaya", NationalID: "12345678901"})
	if err == nil {
		t.Error("expected error for duplicate national id")
	}
}

func TestCreatePatient_NoNationalID(t *testing.T) {
	svc := NewService(newMockRepo())

	if err := svc.CreatePatient(context.Background(), &Patient{FullName: "Fatma Şahin"}); err != nil {
		t.Errorf("expected patient without national id to be accepted: %v", err)
	}
}

func TestUpdatePatient(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Patient{FullName: "Ahmet Yılmaz", NationalID: "12345678901"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}

	p.FullName = "Ahmet Can Yılmaz"
	if err := svc.UpdatePatient(context.Background(), p); err != nil {
		t.Fatalf("UpdatePatient failed: %v", err)
	}
	got, err := svc.GetPatient(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetPatient failed: %v", err)
	}
	if got.FullName != "Ahmet Can Yılmaz" {
		t.Errorf("expected updated name, got %q", got.FullName)
	}
}

func TestDeletePatient_ExcludedFromRegistry(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	p := &Patient{FullName: "Ahmet Yılmaz"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}
	if err := svc.DeletePatient(context.Background(), p.ID); err != nil {
		t.Fatalf("DeletePatient failed: %v", err)
	}

	snapshot, err := svc.RegistrySnapshot(context.Background())
	if err != nil {
		t.Fatalf("RegistrySnapshot failed: %v", err)
	}
	for _, rec := range snapshot {
		if rec.ID == p.ID {
			t.Error("deleted patient should not appear in registry snapshot")
		}
	}
}

func TestListPatients_Pagination(t *testing.T) {
	svc := NewService(newMockRepo())

	for i := 0; i < 5; i++ {
		p := &Patient{FullName: fmt.Sprintf("Hasta %d", i)}
		if err := svc.CreatePatient(context.Background(), p); err != nil {
			t.Fatalf("CreatePatient failed: %v", err)
		}
	}

	items, total, err := svc.ListPatients(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("ListPatients failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(items) != 2 {
		t.Errorf("expected 2 items, got %d", len(items))
	}
}

func TestRegistrySnapshot_InsertionOrder(t *testing.T) {
	svc := NewService(newMockRepo())

	names := []string{"Ahmet Yılmaz", "Ayşe Demir", "Mehmet Kaya"}
	for _, name := range names {
		if err := svc.CreatePatient(context.Background(), &Patient{FullName: name}); err != nil {
			t.Fatalf("CreatePatient failed: %v", err)
		}
	}

	snapshot, err := svc.RegistrySnapshot(context.Background())
	if err != nil {
		t.Fatalf("RegistrySnapshot failed: %v", err)
	}
	if len(snapshot) != len(names) {
		t.Fatalf("expected %d patients, got %d", len(names), len(snapshot))
	}
	for i, name := range names {
		if snapshot[i].FullName != name {
			t.Errorf("position %d: expected %q, got %q", i, name, snapshot[i].FullName)
		}
	}
}
