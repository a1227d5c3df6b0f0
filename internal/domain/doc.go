// Package domain models Malaysian flood zones and the rules that reconcile
// them.
//
// # Signal Sources
//
// Zone updates arrive from three places:
//
//	live weather   an AI search over current weather for one state (a
//	               "Statewide Overview" zone) or for the towns of one state
//	user reports   a photo analysed by the vision classifier and pinned to the
//	               reporter's coordinates
//	seed list      one zero-severity zone per known locality, loaded once
//
// Every candidate zone carries a [Provenance] set by the factory. Merge rules
// branch on it; ids are never inspected for prefixes.
//
// # Severity
//
// Severity is an integer 0–10. Bands are inclusive on the lower bound:
//
//	>= 8  critical  red     "Flash Flood"
//	>= 4  moderate  orange  "Heavy Rain"
//	else  normal    green   "Normal"
//
// Color is always derived from severity by [FloodZone.Normalize].
//
// # Reconciliation
//
// When a state has both a live reading and community reports, [Reconcile]
// combines them:
//
//	no reports                      live severity
//	both flooding or both clear     round(0.6*live + 0.4*user)
//	live flooding, users clear      live severity
//	users flooding, raining         round(0.3*live + 0.7*user)
//	users flooding, dry             min(round(0.5*live + 0.5*user), 6)
//
// Rounding is half-up and done in integer tenths.
//
// # Deduplication
//
// At most one zone exists per (state, normalised name). Names are normalised
// by [NormalizeName]: parenthetical suffixes such as "(Default)" are removed,
// whitespace trimmed, letters lower-cased. A candidate matches an existing
// zone with the same id, or failing that the first zone in insertion order in
// the same state whose name, or specific location, equals the candidate's
// name. See [Matches] and [MergeZone].
//
// # Expiry
//
// A zone whose EstimatedEndTime parses and lies strictly before now is hidden
// from views by [IsExpired]. "N/A", "Unknown" and unparseable values keep the
// zone visible.
package domain
