package domain

import "time"

// Provenance records where a zone update came from.
type Provenance string

const (
	ProvenanceSeed Provenance = "seed"
	ProvenanceLive Provenance = "live"
	ProvenanceUser Provenance = "user"
)

// Severity band thresholds (inclusive lower bounds).
const (
	CriticalSeverity = 8
	FloodSeverity    = 4
	MaxSeverity      = 10
)

// Color labels derived from severity.
const (
	ColorRed    = "red"
	ColorOrange = "orange"
	ColorGreen  = "green"
)

// Sentinel values used by classifiers for an unknown event window.
const (
	TimeNotApplicable = "N/A"
	TimeUnknown       = "Unknown"
)

// LatLng is a WGS-84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AIAnalysis is the structured narrative shown on a zone's detail view.
type AIAnalysis struct {
	WaterDepth        string `json:"water_depth"`
	CurrentSpeed      string `json:"current_speed"`
	RiskLevel         string `json:"risk_level"`
	HistoricalContext string `json:"historical_context"`
}

// AIRecommendation holds routing advice for residents.
type AIRecommendation struct {
	ImpassableRoads  string `json:"impassable_roads"`
	EvacuationRoute  string `json:"evacuation_route"`
	EvacuationCenter string `json:"evacuation_center"`
}

// Terrain classifies the ground around a zone.
type Terrain struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// Historical summarises how often a zone has flooded.
type Historical struct {
	Frequency string `json:"frequency"`
	Status    string `json:"status"`
}

// FloodZone is a named locality, or a whole-state aggregate, with its current
// flood assessment.
type FloodZone struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	SpecificLocation string     `json:"specific_location"`
	State            string     `json:"state"`
	Region           string     `json:"region"`
	Center           LatLng     `json:"center"`
	Severity         int        `json:"severity"`
	Forecast         string     `json:"forecast"`
	Color            string     `json:"color"`
	Paths            []LatLng   `json:"paths,omitempty"`
	Sources          []string   `json:"sources"`
	Provenance       Provenance `json:"provenance"`
	IsRaining        bool       `json:"is_raining"`
	LastUpdated      time.Time  `json:"last_updated"`

	DrainageBlockage int `json:"drainage_blockage"` // percent
	Rainfall         int `json:"rainfall"`          // mm/hr
	AIConfidence     int `json:"ai_confidence"`     // percent

	AIAnalysisText   string           `json:"ai_analysis_text"`
	AIAnalysis       AIAnalysis       `json:"ai_analysis"`
	AIRecommendation AIRecommendation `json:"ai_recommendation"`

	EstimatedStartTime string      `json:"estimated_start_time,omitempty"`
	EstimatedEndTime   string      `json:"estimated_end_time,omitempty"`
	EventType          string      `json:"event_type,omitempty"`
	Terrain            *Terrain    `json:"terrain,omitempty"`
	Historical         *Historical `json:"historical,omitempty"`
	NotifiedDepts      []string    `json:"notified_depts,omitempty"`
}

// Normalize clamps the bounded metrics and recomputes Color. The store calls
// it on every commit so a stored zone is never inconsistent.
func (z *FloodZone) Normalize() {
	z.Severity = ClampSeverity(z.Severity)
	z.DrainageBlockage = clamp(z.DrainageBlockage, 0, 100)
	z.AIConfidence = clamp(z.AIConfidence, 0, 100)
	if z.Rainfall < 0 {
		z.Rainfall = 0
	}
	z.Color = SeverityColor(z.Severity)
}

// IsFlooding reports whether the zone is at or above the flood threshold.
func (z FloodZone) IsFlooding() bool {
	return z.Severity >= FloodSeverity
}

// Clone returns a deep copy so callers can't alias the store's slices.
func (z FloodZone) Clone() FloodZone {
	c := z
	c.Paths = append([]LatLng(nil), z.Paths...)
	c.Sources = append([]string(nil), z.Sources...)
	c.NotifiedDepts = append([]string(nil), z.NotifiedDepts...)
	if z.Terrain != nil {
		t := *z.Terrain
		c.Terrain = &t
	}
	if z.Historical != nil {
		h := *z.Historical
		c.Historical = &h
	}
	return c
}

// SeverityColor maps a severity to its display color.
func SeverityColor(severity int) string {
	switch {
	case severity >= CriticalSeverity:
		return ColorRed
	case severity >= FloodSeverity:
		return ColorOrange
	default:
		return ColorGreen
	}
}

// ClampSeverity limits a severity to [0, 10].
func ClampSeverity(severity int) int {
	return clamp(severity, 0, MaxSeverity)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
