package domain

import (
	"context"
	"time"
)

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for a sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SignalKind discriminates the payload of a Signal.
type SignalKind string

const (
	KindStateWeather SignalKind = "state_weather"
	KindTownWeather  SignalKind = "town_weather"
	KindVisionReport SignalKind = "vision_report"
)

// Signal is one message on the source topic. Exactly one payload matches
// Kind.
type Signal struct {
	Kind         SignalKind    `json:"kind"`
	StateWeather *StateWeather `json:"state_weather,omitempty"`
	TownWeather  *TownWeather  `json:"town_weather,omitempty"`
	Report       *UserReport   `json:"vision_report,omitempty"`
}

// StateWeather is the live-weather classifier's reading for a whole state.
type StateWeather struct {
	State            string `json:"state"`
	WeatherCondition string `json:"weather_condition"`
	IsRaining        bool   `json:"is_raining"`
	FloodRisk        string `json:"flood_risk,omitempty"`
	Severity         int    `json:"severity"`
	AIAnalysisText   string `json:"ai_analysis_text"`
}

// TownReading is the live-weather classifier's reading for one town.
type TownReading struct {
	Town             string  `json:"town"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	Severity         int     `json:"severity"`
	IsRaining        bool    `json:"is_raining"`
	WeatherCondition string  `json:"weather_condition"`
	AIAnalysisText   string  `json:"ai_analysis_text"`
}

// TownWeather groups the town readings returned for one state.
type TownWeather struct {
	State string        `json:"state"`
	Towns []TownReading `json:"towns"`
}

// VisionAssessment is the vision classifier's verdict on a user photo.
type VisionAssessment struct {
	IsRelevant         bool   `json:"is_relevant"`
	RejectionReason    string `json:"rejection_reason,omitempty"`
	RiskScore          int    `json:"risk_score"`
	Directive          string `json:"directive"`
	AIConfidence       int    `json:"ai_confidence,omitempty"`
	AnalysisText       string `json:"analysis_text,omitempty"`
	EstimatedStartTime string `json:"estimated_start_time,omitempty"`
	EstimatedEndTime   string `json:"estimated_end_time,omitempty"`
	EventType          string `json:"event_type,omitempty"`
}

// UserReport is a community photo report after vision analysis. Name, State
// and coordinates may be missing and are then filled by geocoding.
type UserReport struct {
	ReportID      string           `json:"report_id,omitempty"`
	Name          string           `json:"name,omitempty"`
	Address       string           `json:"address,omitempty"`
	State         string           `json:"state,omitempty"`
	Lat           float64          `json:"lat,omitempty"`
	Lng           float64          `json:"lng,omitempty"`
	Assessment    VisionAssessment `json:"assessment"`
	NotifiedDepts []string         `json:"notified_depts,omitempty"`
}
