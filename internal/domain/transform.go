package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid"
)

// Labels for synthetic zones.
const (
	StatewideOverview = "Statewide Overview"
	LiveRegion        = "Live Region"
	UnknownRegion     = "Unknown Region"
	ReportedLocation  = "Reported Location"
)

const (
	userReportRadius   = 0.02
	reportIDAlphabet   = "0123456789abcdefghijklmnopqrstuvwxyz"
	reportIDLength     = 12
	userReportIDPrefix = "user_reported_"
	liveLocationPrefix = "Live Weather: "
)

var (
	// ErrUnknownSignal is returned for a signal whose kind or payload is missing.
	ErrUnknownSignal = errors.New("unknown signal kind")

	// ErrIrrelevantReport is returned when the vision classifier rejected a photo.
	ErrIrrelevantReport = errors.New("report rejected by classifier")
)

var (
	liveStateSources = []string{"Google Weather", "CCTV Live", "AI Analysis"}
	liveTownSources  = []string{"Google Maps", "Google Search", "AI Analysis"}
	userSources      = []string{SourceUserReports, "AI Analysis"}
)

// ParseSignal deserializes a RawEvent's value into a Signal and checks that
// the payload matching its kind is present.
func ParseSignal(raw RawEvent) (Signal, error) {
	var s Signal
	if err := json.Unmarshal(raw.Value, &s); err != nil {
		return Signal{}, fmt.Errorf("parse signal: %w", err)
	}
	switch {
	case s.Kind == KindStateWeather && s.StateWeather != nil:
	case s.Kind == KindTownWeather && s.TownWeather != nil:
	case s.Kind == KindVisionReport && s.Report != nil:
	default:
		return Signal{}, fmt.Errorf("%w: %q", ErrUnknownSignal, s.Kind)
	}
	return s, nil
}

// StateWeatherZone builds the "Statewide Overview" candidate for a state.
// Unknown states are placed at the Kuala Lumpur centre.
func StateWeatherZone(w StateWeather) FloodZone {
	center := stateCenter(w.State)
	z := NewZone(
		LiveStateZoneID(w.State), StatewideOverview,
		liveLocationPrefix+w.WeatherCondition,
		w.State, LiveRegion, center.Lat, center.Lng,
		w.Severity, w.WeatherCondition,
		WithSources(liveStateSources...),
		WithProvenance(ProvenanceLive),
	)
	applyLiveReading(&z, w.IsRaining, w.AIAnalysisText)
	return z
}

// TownWeatherZones builds one live candidate per town reading.
func TownWeatherZones(w TownWeather) []FloodZone {
	zones := make([]FloodZone, 0, len(w.Towns))
	for _, t := range w.Towns {
		if strings.TrimSpace(t.Town) == "" {
			continue
		}
		z := NewZone(
			LiveTownZoneID(t.Town, w.State), t.Town,
			liveLocationPrefix+t.WeatherCondition,
			w.State, LiveRegion, t.Lat, t.Lng,
			t.Severity, t.WeatherCondition,
			WithSources(liveTownSources...),
			WithProvenance(ProvenanceLive),
		)
		applyLiveReading(&z, t.IsRaining, t.AIAnalysisText)
		zones = append(zones, z)
	}
	return zones
}

func applyLiveReading(z *FloodZone, raining bool, analysis string) {
	z.IsRaining = raining
	if analysis != "" {
		z.AIAnalysisText = analysis
	}
	if raining {
		z.EventType = "Heavy Rain"
	} else {
		z.EventType = "Normal"
	}
}

// ReportZone builds a user-report candidate from an analysed photo. The
// report should already be enriched with a location; a missing state falls
// back to one detected from the address.
func ReportZone(r UserReport) (FloodZone, error) {
	a := r.Assessment
	if !a.IsRelevant {
		if a.RejectionReason != "" {
			return FloodZone{}, fmt.Errorf("%w: %s", ErrIrrelevantReport, a.RejectionReason)
		}
		return FloodZone{}, ErrIrrelevantReport
	}

	id, err := reportZoneID(r.ReportID)
	if err != nil {
		return FloodZone{}, err
	}

	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = ReportedLocation
	}
	state := r.State
	if info, ok := LookupState(state); ok {
		state = info.Name
	} else {
		state = DetectState(r.Address + " " + r.State)
	}

	z := NewZone(id, name, name, state, UnknownRegion, r.Lat, r.Lng, a.RiskScore, a.Directive,
		WithRadius(userReportRadius),
		WithSources(userSources...),
		WithProvenance(ProvenanceUser),
	)
	if a.AnalysisText != "" {
		z.AIAnalysisText = a.AnalysisText
	}
	if a.AIConfidence > 0 {
		z.AIConfidence = a.AIConfidence
	}
	z.EstimatedStartTime = a.EstimatedStartTime
	z.EstimatedEndTime = a.EstimatedEndTime
	if a.EventType != "" {
		z.EventType = a.EventType
	}
	z.NotifiedDepts = UnionStrings(nil, r.NotifiedDepts)
	z.Normalize()
	return z, nil
}

// reportZoneID keeps a client-supplied report id so redelivered messages map
// to the same zone; otherwise a random one is generated.
func reportZoneID(reportID string) (string, error) {
	if reportID = strings.TrimSpace(reportID); reportID != "" {
		return userReportIDPrefix + Slug(reportID), nil
	}
	suffix, err := gonanoid.Generate(reportIDAlphabet, reportIDLength)
	if err != nil {
		return "", fmt.Errorf("generate report id: %w", err)
	}
	return userReportIDPrefix + suffix, nil
}

func stateCenter(state string) LatLng {
	if info, ok := LookupState(state); ok {
		return info.Center
	}
	info, _ := LookupState(DefaultState)
	return info.Center
}

// CandidateZones converts a parsed signal into the zones it proposes.
func CandidateZones(s Signal) ([]FloodZone, error) {
	switch s.Kind {
	case KindStateWeather:
		return []FloodZone{StateWeatherZone(*s.StateWeather)}, nil
	case KindTownWeather:
		return TownWeatherZones(*s.TownWeather), nil
	case KindVisionReport:
		z, err := ReportZone(*s.Report)
		if err != nil {
			return nil, err
		}
		return []FloodZone{z}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSignal, s.Kind)
	}
}

// SerializeZone converts a committed zone into a sink message keyed by id.
func SerializeZone(z FloodZone) (OutputEvent, error) {
	value, err := json.Marshal(z)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("marshal zone: %w", err)
	}
	return OutputEvent{
		Key:   []byte(z.ID),
		Value: value,
		Headers: map[string]string{
			"state":      z.State,
			"provenance": string(z.Provenance),
			"severity":   fmt.Sprintf("%d", z.Severity),
		},
	}, nil
}
