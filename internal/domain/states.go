package domain

import (
	"regexp"
	"strings"
)

// DefaultState is used when no state can be detected from an address.
const DefaultState = "Kuala Lumpur"

// StateInfo is one Malaysian state or federal territory.
type StateInfo struct {
	Name   string
	Region string
	Center LatLng
}

// States lists the 16 states and federal territories in refresh order.
var States = []StateInfo{
	{"Selangor", "Central Region", LatLng{3.07, 101.51}},
	{"Kuala Lumpur", "Federal Territory", LatLng{3.14, 101.69}},
	{"Johor", "Southern Region", LatLng{1.49, 103.74}},
	{"Penang", "Northern Region", LatLng{5.35, 100.28}},
	{"Pahang", "East Coast", LatLng{3.81, 103.32}},
	{"Sarawak", "East Malaysia", LatLng{1.55, 110.35}},
	{"Sabah", "East Malaysia", LatLng{5.98, 116.07}},
	{"Perak", "Northern Region", LatLng{4.59, 101.09}},
	{"Kedah", "Northern Region", LatLng{6.12, 100.36}},
	{"Kelantan", "East Coast", LatLng{6.12, 102.23}},
	{"Terengganu", "East Coast", LatLng{5.33, 103.15}},
	{"Negeri Sembilan", "Central Region", LatLng{2.72, 101.94}},
	{"Melaka", "Southern Region", LatLng{2.19, 102.25}},
	{"Perlis", "Northern Region", LatLng{6.44, 100.20}},
	{"Putrajaya", "Federal Territory", LatLng{2.92, 101.69}},
	{"Labuan", "Federal Territory", LatLng{5.28, 115.24}},
}

// LookupState returns the state with the given name.
func LookupState(name string) (StateInfo, bool) {
	for _, s := range States {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return StateInfo{}, false
}

// stateAliases maps address fragments to canonical state names. Federal
// territories come first so "Wilayah Persekutuan Kuala Lumpur" is not read
// as some other state.
var stateAliases = []struct {
	fragment, state string
}{
	{"kuala lumpur", "Kuala Lumpur"},
	{"labuan", "Labuan"},
	{"putrajaya", "Putrajaya"},
	{"penang", "Penang"},
	{"pulau pinang", "Penang"},
	{"malacca", "Melaka"},
	{"melaka", "Melaka"},
	{"johor", "Johor"},
	{"kedah", "Kedah"},
	{"kelantan", "Kelantan"},
	{"negeri sembilan", "Negeri Sembilan"},
	{"pahang", "Pahang"},
	{"perak", "Perak"},
	{"perlis", "Perlis"},
	{"sabah", "Sabah"},
	{"sarawak", "Sarawak"},
	{"selangor", "Selangor"},
	{"terengganu", "Terengganu"},
}

// DetectState maps a free-form address or administrative area to one of the
// canonical state names, falling back to DefaultState.
func DetectState(address string) string {
	a := strings.ToLower(address)
	for _, alias := range stateAliases {
		if strings.Contains(a, alias.fragment) {
			return alias.state
		}
	}
	return DefaultState
}

var whitespace = regexp.MustCompile(`\s+`)

// Slug lower-cases s and replaces whitespace runs with underscores.
func Slug(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_")
}

// LiveStateZoneID is the id of a state's "Statewide Overview" zone.
func LiveStateZoneID(state string) string {
	return "live_" + Slug(state)
}

// LiveTownZoneID is the id of a live zone for one town.
func LiveTownZoneID(town, state string) string {
	return "live_town_" + Slug(town) + "_" + Slug(state)
}
