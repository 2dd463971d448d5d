package extract

import "testing"

func TestPatientInfoFrom_AllFields(t *testing.T) {
	raw := "SGK Cihaz Raporu\nAdı Soyadı: Ahmet Yılmaz\nTC Kimlik No: 12345678901\nDoğum Tarihi: 15.06.1985\n"

	info := PatientInfoFrom(raw)

	if info.Name != "Ahmet Yılmaz" {
		t.Errorf("Name = %q, want %q", info.Name, "Ahmet Yılmaz")
	}
	if info.NationalID != "12345678901" {
		t.Errorf("NationalID = %q, want 12345678901", info.NationalID)
	}
	if info.BirthDate != "15.06.1985" {
		t.Errorf("BirthDate = %q, want 15.06.1985", info.BirthDate)
	}
	if info.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", info.Confidence)
	}
}

func TestPatientInfoFrom_BareNameLine(t *testing.T) {
	raw := "CİHAZ TESLİM\nAyşe Demir\nimza\n"

	info := PatientInfoFrom(raw)

	if info.Name != "Ayşe Demir" {
		t.Errorf("Name = %q, want %q", info.Name, "Ayşe Demir")
	}
	if info.NationalID != "" {
		t.Errorf("NationalID = %q, want empty", info.NationalID)
	}
}

func TestPatientInfoFrom_NoPatterns(t *testing.T) {
	info := PatientInfoFrom("lorem ipsum dolor sit amet and nothing else useful")

	if info.Name != "" || info.NationalID != "" || info.BirthDate != "" {
		t.Errorf("expected all-empty fields, got %+v", info)
	}
	if info.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", info.Confidence)
	}
}

func TestPatientInfoFrom_EmptyText(t *testing.T) {
	info := PatientInfoFrom("")
	if info.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", info.Confidence)
	}
}

func TestPatientInfoFrom_PartialFields(t *testing.T) {
	// Only a national ID present: confidence degrades, no error.
	info := PatientInfoFrom("onay belgesi 98765432109 teslim edildi")

	if info.NationalID != "98765432109" {
		t.Errorf("NationalID = %q, want 98765432109", info.NationalID)
	}
	if info.Name != "" {
		t.Errorf("Name = %q, want empty", info.Name)
	}
	if info.Confidence <= 0 || info.Confidence >= 1 {
		t.Errorf("Confidence = %v, want partial value in (0,1)", info.Confidence)
	}
}

func TestPatientInfoFrom_RejectsLeadingZeroID(t *testing.T) {
	info := PatientInfoFrom("kayıt no 01234567890")
	if info.NationalID != "" {
		t.Errorf("NationalID = %q, want empty for leading-zero token", info.NationalID)
	}
}

func TestPatientInfoFrom_ISODate(t *testing.T) {
	info := PatientInfoFrom("doğum tarihi 1985-06-15 olan hasta")
	if info.BirthDate != "1985-06-15" {
		t.Errorf("BirthDate = %q, want 1985-06-15", info.BirthDate)
	}
}

func TestPatientInfoFrom_Deterministic(t *testing.T) {
	raw := "Adı Soyadı: Mehmet Kaya\n12345678901\n01/02/1970"
	first := PatientInfoFrom(raw)
	second := PatientInfoFrom(raw)
	if first != second {
		t.Errorf("extraction not deterministic: %+v vs %+v", first, second)
	}
}
