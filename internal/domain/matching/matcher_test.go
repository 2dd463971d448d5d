package matching

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medintake/medintake/internal/platform/extract"
)

func testRegistry() []RegistryRecord {
	return []RegistryRecord{
		{PatientID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), FullName: "Ahmet Yılmaz", NationalID: "12345678901", BirthDate: "1985-06-15"},
		{PatientID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), FullName: "Ayşe Demir", NationalID: "23456789012", BirthDate: "1990-01-20"},
		{PatientID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), FullName: "Mehmet Kaya", NationalID: "34567890123", BirthDate: "1978-11-02"},
	}
}

func TestHeuristic_ExactNationalID(t *testing.T) {
	m := NewHeuristicMatcher(DefaultMatchWeights())
	info := extract.PatientInfo{NationalID: "23456789012"}

	result, err := m.Match(context.Background(), info, testRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(result.Candidates))
	}
	top := result.Candidates[0]
	if top.DisplayName != "Ayşe Demir" {
		t.Errorf("top candidate = %q, want Ayşe Demir", top.DisplayName)
	}
	if top.Score < 0.9 {
		t.Errorf("score = %v, want >= 0.9", top.Score)
	}
	if !containsReason(top.MatchReasons, ReasonNationalID) {
		t.Errorf("reasons = %v, want %s", top.MatchReasons, ReasonNationalID)
	}
}

func TestHeuristic_SingleEditNamePlusBirthDate(t *testing.T) {
	m := NewHeuristicMatcher(DefaultMatchWeights())
	info := extract.PatientInfo{Name: "Ahmer Yılmaz", BirthDate: "15.06.1985"}

	result, err := m.Match(context.Background(), info, testRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Candidates) == 0 {
		t.Fatal("expected at least one candidate")
	}
	top := result.Candidates[0]
	if top.DisplayName != "Ahmet Yılmaz" {
		t.Errorf("top candidate = %q, want Ahmet Yılmaz", top.DisplayName)
	}
	if top.Score <= 0.4 {
		t.Errorf("score = %v, want above inclusion threshold", top.Score)
	}
	if !containsReason(top.MatchReasons, ReasonNameSimilarity) || !containsReason(top.MatchReasons, ReasonBirthDate) {
		t.Errorf("reasons = %v, want name_similarity and birth_date", top.MatchReasons)
	}
}

func TestHeuristic_NoSignal(t *testing.T) {
	m := NewHeuristicMatcher(DefaultMatchWeights())
	info := extract.PatientInfo{Name: "Zeynep Arslan", NationalID: "99999999999", BirthDate: "2001-03-03"}

	result, err := m.Match(context.Background(), info, testRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(result.Candidates))
	}
	if result.TopScore != 0 {
		t.Errorf("TopScore = %v, want 0", result.TopScore)
	}
}

func TestHeuristic_ThresholdExclusion(t *testing.T) {
	m := NewHeuristicMatcher(DefaultMatchWeights())
	// Word-match-only overlap contributes at most 0.5; a single shared token
	// out of three extracted tokens stays well below the 0.4 inclusion
	// threshold.
	info := extract.PatientInfo{Name: "Hasan Yılmaz Oğlu"}

	result, _ := m.Match(context.Background(), info, testRegistry())
	for _, c := range result.Candidates {
		if c.Score <= 0.4 {
			t.Errorf("candidate %q included with score %v <= 0.4", c.DisplayName, c.Score)
		}
	}
}

func TestHeuristic_RankingInvariant(t *testing.T) {
	m := NewHeuristicMatcher(DefaultMatchWeights())
	info := extract.PatientInfo{Name: "Ahmet Yılmaz", NationalID: "23456789012"}

	result, _ := m.Match(context.Background(), info, testRegistry())
	for i := 1; i < len(result.Candidates); i++ {
		if result.Candidates[i].Score > result.Candidates[i-1].Score {
			t.Errorf("candidates not sorted descending at index %d", i)
		}
	}
	if len(result.Candidates) > 0 && result.TopScore != result.Candidates[0].Score {
		t.Errorf("TopScore = %v, want %v", result.TopScore, result.Candidates[0].Score)
	}
}

func TestHeuristic_TieKeepsRegistryOrder(t *testing.T) {
	m := NewHeuristicMatcher(DefaultMatchWeights())
	registry := []RegistryRecord{
		{PatientID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), FullName: "Ali Veli", NationalID: "11111111111"},
		{PatientID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), FullName: "Ali Veli", NationalID: "22222222222"},
	}
	info := extract.PatientInfo{Name: "Ali Veli"}

	result, _ := m.Match(context.Background(), info, registry)
	if len(result.Candidates) != 2 {
		t.Fatalf("got %d candidates, want 2", len(result.Candidates))
	}
	if result.Candidates[0].PatientID != registry[0].PatientID {
		t.Error("tie did not preserve registry insertion order")
	}
}

func TestHeuristic_ScoreClampedToOne(t *testing.T) {
	m := NewHeuristicMatcher(DefaultMatchWeights())
	info := extract.PatientInfo{Name: "Ahmet Yılmaz", NationalID: "12345678901", BirthDate: "1985-06-15"}

	result, _ := m.Match(context.Background(), info, testRegistry())
	if len(result.Candidates) == 0 {
		t.Fatal("expected a candidate")
	}
	if result.TopScore > 1.0 {
		t.Errorf("TopScore = %v, exceeds 1.0", result.TopScore)
	}
}

func TestHeuristic_Deterministic(t *testing.T) {
	m := NewHeuristicMatcher(DefaultMatchWeights())
	info := extract.PatientInfo{Name: "Ahmet Yilmaz", BirthDate: "15/06/1985"}

	first, _ := m.Match(context.Background(), info, testRegistry())
	second, _ := m.Match(context.Background(), info, testRegistry())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("matching not deterministic: %+v vs %+v", first, second)
	}
}

func TestWeighted_ExactEverything(t *testing.T) {
	m := NewWeightedMatcher(DefaultMatchWeights())
	info := extract.PatientInfo{Name: "Mehmet Kaya", NationalID: "34567890123", BirthDate: "02.11.1978"}

	result, err := m.Match(context.Background(), info, testRegistry())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(result.Candidates))
	}
	if result.TopScore != 1.0 {
		t.Errorf("TopScore = %v, want 1.0", result.TopScore)
	}
	top := result.Candidates[0]
	for _, want := range []string{ReasonExactName, ReasonNationalID, ReasonBirthDate} {
		if !containsReason(top.MatchReasons, want) {
			t.Errorf("reasons = %v, missing %s", top.MatchReasons, want)
		}
	}
}

func TestWeighted_IDOnlyBelowInclusion(t *testing.T) {
	// The primary's normalized ID weight alone does not clear the inclusion
	// threshold; the engine is expected to fall back to the heuristic for
	// ID-only documents.
	m := NewWeightedMatcher(DefaultMatchWeights())
	info := extract.PatientInfo{NationalID: "34567890123"}

	result, _ := m.Match(context.Background(), info, testRegistry())
	if len(result.Candidates) != 0 {
		t.Errorf("got %d candidates, want 0", len(result.Candidates))
	}
}

type errProvider struct{}

func (errProvider) Match(context.Context, extract.PatientInfo, []RegistryRecord) (Result, error) {
	return Result{}, errors.New("provider offline")
}

func TestEngine_FallsBackOnPrimaryError(t *testing.T) {
	engine := NewEngine(errProvider{}, NewHeuristicMatcher(DefaultMatchWeights()), zerolog.Nop())
	info := extract.PatientInfo{NationalID: "12345678901"}

	result := engine.Match(context.Background(), info, testRegistry())
	if len(result.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1 from fallback", len(result.Candidates))
	}
	if result.Candidates[0].DisplayName != "Ahmet Yılmaz" {
		t.Errorf("fallback candidate = %q, want Ahmet Yılmaz", result.Candidates[0].DisplayName)
	}
}

func TestEngine_FallsBackOnEmptyPrimaryResult(t *testing.T) {
	weights := DefaultMatchWeights()
	engine := NewEngine(NewWeightedMatcher(weights), NewHeuristicMatcher(weights), zerolog.Nop())
	info := extract.PatientInfo{NationalID: "23456789012"}

	result := engine.Match(context.Background(), info, testRegistry())
	if len(result.Candidates) != 1 {
		t.Fatalf("got %d candidates, want 1", len(result.Candidates))
	}
	if result.TopScore < 0.9 {
		t.Errorf("TopScore = %v, want heuristic score >= 0.9", result.TopScore)
	}
}

func TestEngine_NilPrimary(t *testing.T) {
	engine := NewEngine(nil, NewHeuristicMatcher(DefaultMatchWeights()), zerolog.Nop())
	result := engine.Match(context.Background(), extract.PatientInfo{Name: "Ahmet Yılmaz"}, testRegistry())
	if len(result.Candidates) == 0 {
		t.Error("expected fallback to produce candidates")
	}
}

func TestMaskNationalID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"12345678901", "123******01"},
		{"12345", "*****"},
		{"", ""},
	}
	for _, c := range cases {
		if got := MaskNationalID(c.in); got != c.want {
			t.Errorf("MaskNationalID(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func containsReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}
