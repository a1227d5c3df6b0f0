package domain

import (
	"context"
	"log/slog"
)

// EnrichReport fills in a user report's missing location details.
// Reports without coordinates are forward geocoded from their name; reports
// with coordinates but no name or state are reverse geocoded. If geocoder is
// nil or the lookup fails the report is returned unchanged.
func EnrichReport(ctx context.Context, report UserReport, geocoder Geocoder, logger *slog.Logger) UserReport {
	if geocoder == nil {
		return report
	}

	hasCoords := report.Lat != 0 || report.Lng != 0
	query := report.Name
	if query == "" {
		query = report.Address
	}

	if !hasCoords && query != "" {
		result, err := geocoder.ForwardGeocode(ctx, query, report.State)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"report_id", report.ReportID,
				"location", query,
				"state", report.State,
				"error", err,
			)
			return report
		}
		if result.Lat != 0 || result.Lng != 0 {
			report.Lat = result.Lat
			report.Lng = result.Lng
			applyPlace(&report, result)
		}
		return report
	}

	if hasCoords && (report.Name == "" || report.State == "") {
		result, err := geocoder.ReverseGeocode(ctx, report.Lat, report.Lng)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"report_id", report.ReportID,
				"lat", report.Lat,
				"lng", report.Lng,
				"error", err,
			)
			return report
		}
		applyPlace(&report, result)
	}

	return report
}

func applyPlace(report *UserReport, result GeocodingResult) {
	if report.Name == "" {
		report.Name = result.PlaceName
	}
	if report.Address == "" {
		report.Address = result.FormattedAddress
	}
	if report.State == "" && result.Region != "" {
		report.State = DetectState(result.Region)
	}
}
