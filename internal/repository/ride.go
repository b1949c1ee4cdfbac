package repository

import (
	"context"
	"time"

	"github.com/ChasingCode34/trip-sync/internal/domain"
)

// MatchQuery describes the search for a compatible pending ride.
type MatchQuery struct {
	// RideID and UserID identify the ride being matched; both are excluded
	// from the result set.
	RideID string
	UserID string

	// Route must match exactly, not merely overlap.
	From domain.Location
	To   domain.Location

	// WindowStart and WindowEnd bound the candidate departure time,
	// inclusive on both ends.
	WindowStart time.Time
	WindowEnd   time.Time
}

// RideRepository defines the persistence operations for rides.
//
// MatchPair and CancelWithRelease are multi-row transitions that must be
// atomic: a half-applied match or cancellation would break the symmetric
// partner invariant, so they live behind the repository where the store
// can commit both writes together.
type RideRepository interface {
	// Create persists a new ride.
	Create(ctx context.Context, ride *domain.Ride) error

	// GetByID retrieves a ride by ID.
	GetByID(ctx context.Context, id string) (*domain.Ride, error)

	// GetAll retrieves recent rides.
	GetAll(ctx context.Context) ([]*domain.Ride, error)

	// GetActiveForUser returns the user's most recent ride with status
	// pending or matched, or ErrNotFound.
	GetActiveForUser(ctx context.Context, userID string) (*domain.Ride, error)

	// SweepPast marks every pending or matched ride of the user whose
	// departure time is at or before now as completed, returning how many
	// rides were expired.
	SweepPast(ctx context.Context, userID string, now time.Time) (int64, error)

	// FindMatchCandidates returns pending rides compatible with the query,
	// oldest created first (FIFO).
	FindMatchCandidates(ctx context.Context, q MatchQuery) ([]*domain.Ride, error)

	// MatchPair atomically moves both rides from pending to matched and
	// cross-links them. Returns ErrRideNotPending if either side is no
	// longer pending; in that case neither ride is modified.
	MatchPair(ctx context.Context, rideID, partnerID string) error

	// CancelWithRelease atomically cancels the given ride and, when
	// partnerID is non-empty, releases the partner back to pending with
	// its partner reference cleared.
	CancelWithRelease(ctx context.Context, rideID, partnerID string) error
}
