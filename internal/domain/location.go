package domain

import "time"

// Location is one of the canonical endpoints the service recognizes as a
// valid trip origin or destination.
type Location string

const (
	LocationEmory   Location = "Emory University"
	LocationAirport Location = "Hartsfield-Jackson Atlanta International Airport"
)

// Locations lists every canonical endpoint.
var Locations = []Location{LocationEmory, LocationAirport}

// Opposite returns the other canonical endpoint. With exactly two endpoints
// a single mention in a message implies the counterpart.
func (l Location) Opposite() Location {
	if l == LocationEmory {
		return LocationAirport
	}
	return LocationEmory
}

// Trip is a structured ride request extracted from free text.
// DepartureTime is timezone-naive and interpreted in the service's local zone.
type Trip struct {
	DepartureTime time.Time
	From          Location
	To            Location
}
