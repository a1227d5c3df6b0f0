package domain

import "sort"

// StateSummary aggregates the visible zones of one state.
type StateSummary struct {
	State             string   `json:"state"`
	Region            string   `json:"region"`
	ZoneIDs           []string `json:"zone_ids"`
	MaxSeverity       int      `json:"max_severity"`
	ActiveReports     int      `json:"active_reports"`
	LiveSeverity      int      `json:"live_severity"`
	CommunitySeverity int      `json:"community_severity"`
	ReportCount       int      `json:"report_count"`
	IsRaining         bool     `json:"is_raining"`
	Severity          int      `json:"severity"`
	Color             string   `json:"color"`
}

// SummarizeStates groups zones by state. Every known state gets a row even
// when it has no zones; zones in unknown states get rows of their own.
//
// LiveSeverity is the highest live reading in the state, or the highest seed
// severity when there is no live zone. Severity is the Reconcile result of
// the live and community readings. Rows are ordered by Severity descending,
// then by state name.
func SummarizeStates(zones []FloodZone) []StateSummary {
	rows := make(map[string]*StateSummary, len(States))
	for _, s := range States {
		rows[s.Name] = &StateSummary{State: s.Name, Region: s.Region, ZoneIDs: []string{}}
	}

	baseline := make(map[string]int)
	hasLive := make(map[string]bool)

	for _, z := range zones {
		row, ok := rows[z.State]
		if !ok {
			row = &StateSummary{State: z.State, Region: z.Region, ZoneIDs: []string{}}
			rows[z.State] = row
		}
		row.ZoneIDs = append(row.ZoneIDs, z.ID)
		row.MaxSeverity = max(row.MaxSeverity, z.Severity)
		if z.IsFlooding() {
			row.ActiveReports++
		}

		switch z.Provenance {
		case ProvenanceLive:
			row.LiveSeverity = max(row.LiveSeverity, z.Severity)
			hasLive[z.State] = true
			row.IsRaining = row.IsRaining || z.IsRaining
		case ProvenanceUser:
			row.ReportCount++
			row.CommunitySeverity = max(row.CommunitySeverity, z.Severity)
		default:
			baseline[z.State] = max(baseline[z.State], z.Severity)
		}
	}

	out := make([]StateSummary, 0, len(rows))
	for state, row := range rows {
		if !hasLive[state] {
			row.LiveSeverity = baseline[state]
		}
		row.Severity = Reconcile(ReconciliationInput{
			LiveSeverity:    row.LiveSeverity,
			UserMaxSeverity: row.CommunitySeverity,
			IsRaining:       row.IsRaining,
			UserReportCount: row.ReportCount,
		})
		row.Color = SeverityColor(row.Severity)
		out = append(out, *row)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Severity != out[j].Severity {
			return out[i].Severity > out[j].Severity
		}
		return out[i].State < out[j].State
	})
	return out
}
