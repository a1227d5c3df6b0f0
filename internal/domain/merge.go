package domain

import (
	"regexp"
	"strings"
	"time"
)

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)

// NormalizeName strips parenthetical suffixes, trims whitespace and
// lower-cases, so "Shah Alam (Default) " and "shah alam" compare equal.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(parenthetical.ReplaceAllString(s, "")))
}

// Matches reports whether candidate describes the same logical location as
// existing: same state, and the candidate's name equals existing's name or
// specific location after normalisation.
func Matches(existing, candidate FloodZone) bool {
	if existing.State != candidate.State {
		return false
	}
	name := NormalizeName(candidate.Name)
	if name == "" {
		return false
	}
	return NormalizeName(existing.Name) == name || NormalizeName(existing.SpecificLocation) == name
}

// FindMatch returns the index of the zone candidate should merge into: the
// zone with the same id, otherwise the first structural match in the given
// order. It returns -1 when candidate is a new location.
func FindMatch(zones []FloodZone, candidate FloodZone) int {
	for i := range zones {
		if zones[i].ID == candidate.ID {
			return i
		}
	}
	for i := range zones {
		if Matches(zones[i], candidate) {
			return i
		}
	}
	return -1
}

// MergeZone folds candidate into existing and returns the result. The
// existing id, name and location are kept.
//
// Live candidates replace severity, drainage and rainfall; any other
// provenance takes the maximum so community reports never lower a reading.
// Narrative fields always take the candidate's. Sources and notified
// departments are unioned.
func MergeZone(existing, candidate FloodZone, now time.Time) FloodZone {
	m := existing.Clone()

	if candidate.Provenance == ProvenanceLive {
		m.Severity = candidate.Severity
		m.DrainageBlockage = candidate.DrainageBlockage
		m.Rainfall = candidate.Rainfall
		m.IsRaining = candidate.IsRaining
	} else {
		m.Severity = max(existing.Severity, candidate.Severity)
		m.DrainageBlockage = max(existing.DrainageBlockage, candidate.DrainageBlockage)
		m.Rainfall = max(existing.Rainfall, candidate.Rainfall)
	}

	m.Forecast = candidate.Forecast
	m.AIAnalysisText = candidate.AIAnalysisText
	m.AIAnalysis = candidate.AIAnalysis
	m.AIRecommendation = candidate.AIRecommendation
	m.AIConfidence = max(existing.AIConfidence, candidate.AIConfidence)

	if candidate.EstimatedStartTime != "" {
		m.EstimatedStartTime = candidate.EstimatedStartTime
	}
	if candidate.EstimatedEndTime != "" {
		m.EstimatedEndTime = candidate.EstimatedEndTime
	}
	if candidate.EventType != "" {
		m.EventType = candidate.EventType
	}

	m.Sources = UnionStrings(existing.Sources, candidate.Sources)
	if len(candidate.NotifiedDepts) > 0 {
		m.NotifiedDepts = UnionStrings(existing.NotifiedDepts, candidate.NotifiedDepts)
	}

	m.LastUpdated = now
	m.Normalize()
	return m
}

// UnionStrings returns a followed by the elements of b not already present,
// dropping duplicates and empty strings while keeping first-seen order.
func UnionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
