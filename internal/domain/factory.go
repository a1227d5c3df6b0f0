package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Factory defaults.
const (
	DefaultRadius     = 0.05
	DefaultVertices   = 14
	SourceWeatherAPI  = "Weather API"
	SourceUserReports = "User Reports"
)

var (
	terrainTypes       = [4]string{"Low", "Flat", "Hilly", "Steep"}
	terrainLabels      = [4]string{"Depression", "Plains", "Slopes", "High Ground"}
	historicalFreqs    = [4]string{"0×/yr", "1×/yr", "2×/yr", "3+×/yr"}
	historicalStatuses = [4]string{"Inactive", "Monitor", "Active", "Critical"}
)

type zoneOptions struct {
	radius     float64
	sources    []string
	provenance Provenance
	vertices   int
}

// ZoneOption customises NewZone.
type ZoneOption func(*zoneOptions)

// WithRadius sets the outline radius in degrees.
func WithRadius(r float64) ZoneOption {
	return func(o *zoneOptions) { o.radius = r }
}

// WithSources replaces the default ["Weather API"] source list.
func WithSources(sources ...string) ZoneOption {
	return func(o *zoneOptions) { o.sources = sources }
}

// WithProvenance tags the zone's origin. Defaults to ProvenanceLive.
func WithProvenance(p Provenance) ZoneOption {
	return func(o *zoneOptions) { o.provenance = p }
}

// WithVertices sets the number of outline points.
func WithVertices(n int) ZoneOption {
	return func(o *zoneOptions) { o.vertices = n }
}

// NewZone expands a location, severity and forecast into a fully populated
// zone. Every derived value comes from a seed of lat+lng and the severity, so
// identical inputs always produce identical zones apart from the timestamps.
func NewZone(id, name, specificLocation, state, region string, lat, lng float64, severity int, forecast string, opts ...ZoneOption) FloodZone {
	o := zoneOptions{
		radius:     DefaultRadius,
		sources:    []string{SourceWeatherAPI},
		provenance: ProvenanceLive,
		vertices:   DefaultVertices,
	}
	for _, opt := range opts {
		opt(&o)
	}

	severity = ClampSeverity(severity)
	seed := lat + lng
	sev := float64(severity)
	now := clock.Now().UTC()

	terrainIdx := int(math.Mod(math.Abs(seed), 4))
	historicalIdx := int(math.Mod(math.Abs(seed*2), 4))

	start, end := estimatedWindow(severity, seed, now)

	z := FloodZone{
		ID:               id,
		Name:             name,
		SpecificLocation: specificLocation,
		State:            state,
		Region:           region,
		Center:           LatLng{Lat: lat, Lng: lng},
		Severity:         severity,
		Forecast:         forecast,
		Paths:            Outline(lat, lng, o.radius, o.vertices),
		Sources:          UnionStrings(nil, o.sources),
		Provenance:       o.provenance,
		LastUpdated:      now,
		DrainageBlockage: min(100, int(math.Floor(sev*10+math.Mod(seed, 10)))),
		Rainfall:         int(math.Floor(sev*5 + math.Mod(seed, 20))),
		AIConfidence:     min(100, int(math.Floor(85+math.Mod(seed, 15)))),
		AIAnalysisText:   analysisText(severity),
		AIAnalysis: AIAnalysis{
			WaterDepth:        waterDepth(severity),
			CurrentSpeed:      pick(severity, "rapid current", "moderate current", "still water"),
			RiskLevel:         pick(severity, "Ground floors at risk.", "Roads partially flooded.", "Normal conditions."),
			HistoricalContext: pick(severity, "Matches Dec 2021 pattern", "Typical monsoon levels", "Typical monsoon levels"),
		},
		AIRecommendation: AIRecommendation{
			ImpassableRoads: pick(severity,
				fmt.Sprintf("Jalan %s impassable.", name),
				fmt.Sprintf("Jalan %s partially flooded.", name),
				"All roads clear."),
			EvacuationRoute:  "via Jalan " + firstWord(specificLocation, "Utama"),
			EvacuationCenter: "SMK " + name,
		},
		EstimatedStartTime: start,
		EstimatedEndTime:   end,
		EventType:          EventTypeFor(severity),
		Terrain:            &Terrain{Type: terrainTypes[terrainIdx], Label: terrainLabels[terrainIdx]},
		Historical:         &Historical{Frequency: historicalFreqs[historicalIdx], Status: historicalStatuses[historicalIdx]},
	}
	z.Normalize()
	return z
}

// EventTypeFor names the event implied by a severity band.
func EventTypeFor(severity int) string {
	return pick(severity, "Flash Flood", "Heavy Rain", "Normal")
}

// Outline returns n points around (lat, lng). Each vertex radius is jittered
// by a deterministic function of the centre. The ring is closed implicitly:
// the last point joins the first.
func Outline(lat, lng, radius float64, n int) []LatLng {
	if n <= 0 {
		return nil
	}
	seed := lat * lng
	paths := make([]LatLng, 0, n)
	for i := 0; i < n; i++ {
		angle := float64(i) / float64(n) * 2 * math.Pi
		r := radius * (0.6 + jitter(seed, i)*0.8)
		paths = append(paths, LatLng{
			Lat: lat + r*math.Cos(angle),
			Lng: lng + r*math.Sin(angle)*1.2,
		})
	}
	return paths
}

// jitter maps (seed, i) to [0, 1).
func jitter(seed float64, i int) float64 {
	x := math.Sin(seed+float64(i)) * 10000
	return x - math.Floor(x)
}

// estimatedWindow derives a start up to 2h before now and an end up to 12h
// after now for flooding severities, "N/A" otherwise.
func estimatedWindow(severity int, seed float64, now time.Time) (string, string) {
	if severity < FloodSeverity {
		return TimeNotApplicable, TimeNotApplicable
	}
	before := time.Duration(jitter(seed, 0) * float64(2*time.Hour)).Truncate(time.Second)
	after := time.Duration(jitter(seed, 1) * float64(12*time.Hour)).Truncate(time.Second)
	return now.Add(-before).Format(time.RFC3339), now.Add(after).Format(time.RFC3339)
}

func pick(severity int, critical, moderate, normal string) string {
	switch {
	case severity >= CriticalSeverity:
		return critical
	case severity >= FloodSeverity:
		return moderate
	default:
		return normal
	}
}

func waterDepth(severity int) string {
	return pick(severity, fmt.Sprintf("%.1fm", float64(severity)*0.1), "0.2m", "0m")
}

func analysisText(severity int) string {
	return pick(severity,
		"Critical infrastructure failure. Evacuation advised for low-lying sectors due to uncontrolled drainage blockage.",
		"Moderate risk detected. Localized flooding possible in depression areas. Monitor water levels closely.",
		"Conditions normal. No immediate flood risk detected in this sector.",
	)
}

func firstWord(s, fallback string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return fallback
}
