package domain

import (
	"strings"
	"time"
)

var endTimeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseEventTime parses a classifier timestamp. Zone-less layouts are read as
// UTC. Sentinels and unknown formats report false.
func ParseEventTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == TimeNotApplicable || s == TimeUnknown {
		return time.Time{}, false
	}
	for _, layout := range endTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsExpired reports whether the zone's estimated end time parses and lies
// strictly before now.
func IsExpired(z FloodZone, now time.Time) bool {
	end, ok := ParseEventTime(z.EstimatedEndTime)
	return ok && end.Before(now)
}

// VisibleZones returns the zones that are not expired. The input is not
// modified.
func VisibleZones(all map[string]FloodZone, now time.Time) map[string]FloodZone {
	out := make(map[string]FloodZone, len(all))
	for id, z := range all {
		if !IsExpired(z, now) {
			out[id] = z
		}
	}
	return out
}

// VisibleSnapshot is VisibleZones for an ordered slice. Order is preserved.
func VisibleSnapshot(zones []FloodZone, now time.Time) []FloodZone {
	out := make([]FloodZone, 0, len(zones))
	for _, z := range zones {
		if !IsExpired(z, now) {
			out = append(out, z)
		}
	}
	return out
}
