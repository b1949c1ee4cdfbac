package domain

import "time"

// RideStatus represents the current status of a ride request.
type RideStatus string

const (
	RideStatusPending   RideStatus = "pending"
	RideStatusMatched   RideStatus = "matched"
	RideStatusCompleted RideStatus = "completed"
	RideStatusCancelled RideStatus = "cancelled"
)

// Ride represents a ride request in the system.
type Ride struct {
	ID     string
	UserID string
	// OriginalMessage is the raw text the user sent, kept as an audit trail.
	OriginalMessage string
	FromLocation    Location
	ToLocation      Location
	// DepartureTime is timezone-naive, interpreted in the service's local zone.
	DepartureTime time.Time
	// PartySize is always 1 for now; reserved for multi-seat support.
	PartySize int
	Status    RideStatus
	// MatchedRideID references the partner ride while both sides are matched.
	// If A references B, B references A.
	MatchedRideID string
	CreatedAt     time.Time
}

// Active reports whether the ride counts toward the one-active-ride-per-user
// limit.
func (r *Ride) Active() bool {
	return r.Status == RideStatusPending || r.Status == RideStatusMatched
}
