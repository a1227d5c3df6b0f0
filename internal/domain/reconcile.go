package domain

// uncorroboratedCap bounds the result when community reports claim flooding
// but neither live data nor rain backs them up.
const uncorroboratedCap = 6

// ReconciliationInput is the live reading and community signal for one state.
type ReconciliationInput struct {
	LiveSeverity    int
	UserMaxSeverity int
	IsRaining       bool
	UserReportCount int
}

// Reconcile combines a live severity with community reports into one
// authoritative severity in [0, 10]. Out-of-range severities are clamped and
// a negative report count is treated as zero.
func Reconcile(in ReconciliationInput) int {
	live := ClampSeverity(in.LiveSeverity)
	user := ClampSeverity(in.UserMaxSeverity)

	if in.UserReportCount <= 0 {
		return live
	}

	liveFlooding := live >= FloodSeverity
	userFlooding := user >= FloodSeverity

	switch {
	case liveFlooding == userFlooding:
		return weighted(live, 6, user, 4)
	case liveFlooding:
		return live
	case in.IsRaining:
		return weighted(live, 3, user, 7)
	default:
		return min(weighted(live, 5, user, 5), uncorroboratedCap)
	}
}

// weighted returns round-half-up(a*wa/10 + b*wb/10). The weights are tenths
// and must sum to 10, so the arithmetic stays in integers.
func weighted(a, wa, b, wb int) int {
	return (a*wa + b*wb + 5) / 10
}
