package patients

import (
	"context"
	"testing"
	"time"
)

func TestRegistry_Snapshot(t *testing.T) {
	svc := NewService(newMockRepo())
	reg := NewRegistry(svc)

	bd := time.Date(1980, 4, 3, 0, 0, 0, 0, time.UTC)
	p := &Patient{FullName: "Ahmet Yılmaz", NationalID: "12345678901", BirthDate: &bd}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}

	records, err := reg.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.PatientID != p.ID || rec.FullName != "Ahmet Yılmaz" || rec.NationalID != "12345678901" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if rec.BirthDate != "1980-04-03" {
		t.Errorf("expected ISO birth date, got %q", rec.BirthDate)
	}
}

func TestRegistry_CreatePatient(t *testing.T) {
	svc := NewService(newMockRepo())
	reg := NewRegistry(svc)

	id, err := reg.CreatePatient(context.Background(), "Ayşe Demir", "98765432109", "03.04.1980")
	if err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}
	p, err := svc.GetPatient(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPatient failed: %v", err)
	}
	if p.BirthDate == nil || p.BirthDateString() != "1980-04-03" {
		t.Errorf("expected parsed birth date, got %v", p.BirthDate)
	}
}

func TestRegistry_CreatePatient_UnparseableDate(t *testing.T) {
	svc := NewService(newMockRepo())
	reg := NewRegistry(svc)

	id, err := reg.CreatePatient(context.Background(), "Mehmet Kaya", "", "not a date")
	if err != nil {
		t.Fatalf("CreatePatient failed: %v", err)
	}
	p, err := svc.GetPatient(context.Background(), id)
	if err != nil {
		t.Fatalf("GetPatient failed: %v", err)
	}
	if p.BirthDate != nil {
		t.Error("expected unparseable date to be dropped")
	}
}
