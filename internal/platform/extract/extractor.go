// Package extract turns raw OCR text into a structured patient-information
// guess. Extraction is best effort: absent fields come back empty with a
// degraded confidence, never as an error, so a noisy scan still flows through
// the pipeline for manual handling.
package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// PatientInfo is the structured guess extracted from raw document text.
// BirthDate is kept free-form; normalization happens during matching.
type PatientInfo struct {
	Name       string  `json:"name"`
	NationalID string  `json:"national_id,omitempty"`
	BirthDate  string  `json:"birth_date,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Confidence contribution per recovered field. A name is the strongest
// locator signal in reimbursement paperwork, the national ID close behind.
const (
	nameConfidence = 0.40
	idConfidence   = 0.35
	dateConfidence = 0.25
)

var (
	// National IDs are 11-digit tokens that never start with zero.
	nationalIDPattern = regexp.MustCompile(`\b[1-9][0-9]{10}\b`)

	// Date-shaped tokens: 1.2.1985, 01/02/1985, 1985-02-01 and similar.
	datePattern = regexp.MustCompile(`\b(?:\d{1,2}[./-]\d{1,2}[./-]\d{4}|\d{4}-\d{2}-\d{2})\b`)

	// Labels that precede a personal name in scanned forms.
	nameLabelPattern = regexp.MustCompile(`(?i)\b(?:adı soyadı|ad soyad|hasta adı|hasta|patient name|name)\s*[:：]\s*([\p{L}][\p{L}.'-]*(?:[ \t]+[\p{L}][\p{L}.'-]*){0,3})`)
)

// PatientInfoFrom applies pattern rules to raw text and returns the best
// structured guess. It never fails: text with no recognizable patterns yields
// all-empty fields with confidence 0.
func PatientInfoFrom(rawText string) PatientInfo {
	info := PatientInfo{}

	if id := nationalIDPattern.FindString(rawText); id != "" {
		info.NationalID = id
		info.Confidence += idConfidence
	}

	if date := datePattern.FindString(rawText); date != "" {
		info.BirthDate = date
		info.Confidence += dateConfidence
	}

	if name := findName(rawText); name != "" {
		info.Name = name
		info.Confidence += nameConfidence
	}

	return info
}

// findName prefers an explicitly labeled name line and falls back to the
// first line that looks like a bare personal name.
func findName(rawText string) string {
	if m := nameLabelPattern.FindStringSubmatch(rawText); len(m) > 1 {
		return normalizeSpaces(m[1])
	}

	for _, line := range strings.Split(rawText, "\n") {
		if name := bareNameIn(line); name != "" {
			return name
		}
	}
	return ""
}

// bareNameIn reports a line that consists of two to four capitalized words
// and nothing else, the usual shape of a name field read in isolation.
// All-uppercase lines are skipped: scanned forms shout their section headers
// in caps far more often than they do patient names.
func bareNameIn(line string) string {
	line = normalizeSpaces(line)
	if line == "" || strings.ContainsAny(line, "0123456789:;,") {
		return ""
	}
	if strings.IndexFunc(line, unicode.IsLower) < 0 {
		return ""
	}

	tokens := strings.Fields(line)
	if len(tokens) < 2 || len(tokens) > 4 {
		return ""
	}
	for _, tok := range tokens {
		runes := []rune(tok)
		if len(runes) < 2 || !unicode.IsUpper(runes[0]) {
			return ""
		}
		for _, r := range runes {
			if !unicode.IsLetter(r) && r != '.' && r != '\'' && r != '-' {
				return ""
			}
		}
	}
	return line
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
