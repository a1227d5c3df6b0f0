package zone

import "github.com/couchcryptid/flood-zone-service/internal/domain"

// EventKind distinguishes single-zone commits from full replacements.
type EventKind int

const (
	// Upserted fires after one zone is created, merged or updated.
	Upserted EventKind = iota + 1
	// Replaced fires after the whole collection was swapped out.
	Replaced
)

func (k EventKind) String() string {
	switch k {
	case Upserted:
		return "upserted"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Outcome says how an Upserted event changed the store.
type Outcome string

const (
	Created Outcome = "created"
	Merged  Outcome = "merged"
	Updated Outcome = "updated"
)

// Event is delivered to observers after a successful commit. Zone is a copy
// of the committed record and is empty for Replaced.
type Event struct {
	Kind    EventKind
	Outcome Outcome
	ZoneID  string
	Zone    domain.FloodZone
}

type observer struct {
	id int
	fn func(Event)
}
