// Package textmatch provides the pure similarity primitives used by patient
// matching: normalized string edit distance and format-invariant date
// comparison. All functions are side-effect free and deterministic.
package textmatch

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// StringSimilarity returns a normalized similarity score in [0, 1] between two
// strings, computed as (maxLen - editDistance) / maxLen over runes with
// case-insensitive comparison. Identical strings score 1.0. Two empty strings
// score 0: no information is not a perfect match.
func StringSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	lenA := len([]rune(a))
	lenB := len([]rune(b))
	maxLen := lenA
	if lenB > maxLen {
		maxLen = lenB
	}
	if maxLen == 0 {
		return 0
	}

	distance := levenshtein.ComputeDistance(a, b)
	return float64(maxLen-distance) / float64(maxLen)
}

// DateSimilarity compares two free-form date strings and returns 1.0 when they
// can denote the same calendar date, 0.0 otherwise. It strips all non-digit
// characters and, for eight-digit sequences, tries both day-month-year and
// year-month-day digit-group orderings.
//
// The result is intentionally binary: two different dates never partially
// match. When day and month are both <= 12 the digit-group orderings are
// ambiguous, so "03/04/2020" matches "2020-04-03" regardless of whether the
// writer meant the 3rd of April or the 4th of March. That ambiguity is a
// documented property of this comparison, not a defect to paper over here.
func DateSimilarity(a, b string) float64 {
	da := digitsOf(a)
	db := digitsOf(b)

	if da == "" || db == "" {
		return 0
	}
	if da == db {
		return 1.0
	}
	if len(da) != 8 || len(db) != 8 {
		return 0
	}

	for _, ca := range canonicalDates(da) {
		for _, cb := range canonicalDates(db) {
			if ca == cb {
				return 1.0
			}
		}
	}
	return 0
}

// canonicalDates returns the YYYYMMDD readings of an eight-digit sequence
// under the supported orderings: the sequence taken as year-month-day, and
// taken as day-month-year.
func canonicalDates(digits string) [2]string {
	return [2]string{
		digits,                                     // YYYYMMDD
		digits[4:8] + digits[2:4] + digits[0:2],    // DDMMYYYY -> YYYYMMDD
	}
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
