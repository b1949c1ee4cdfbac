package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ChasingCode34/trip-sync/internal/domain"
	"github.com/ChasingCode34/trip-sync/internal/notifier"
	"github.com/ChasingCode34/trip-sync/internal/redis"
	"github.com/ChasingCode34/trip-sync/internal/repository"
)

const (
	// DefaultMatchWindow is the departure-time tolerance for pairing two
	// rides, applied inclusively on both sides.
	DefaultMatchWindow = 30 * time.Minute

	routeLockTTL = 10 * time.Second
)

// MatcherInterface defines the matching engine contract. This interface
// allows for testing with mock implementations.
type MatcherInterface interface {
	Match(ctx context.Context, ride *domain.Ride) (*MatchResult, error)
}

// MatchResult contains the outcome of a successful match.
type MatchResult struct {
	Ride        *domain.Ride
	Partner     *domain.Ride
	PartnerUser *domain.User
}

// MatchingService pairs compatible pending rides.
type MatchingService struct {
	rideRepo  repository.RideRepository
	userRepo  repository.UserRepository
	lockStore redis.LockStoreInterface
	notifier  notifier.Notifier
	window    time.Duration
}

// Ensure MatchingService implements MatcherInterface.
var _ MatcherInterface = (*MatchingService)(nil)

// NewMatchingService creates a new MatchingService. lockStore may be nil;
// window <= 0 uses DefaultMatchWindow.
func NewMatchingService(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	lockStore redis.LockStoreInterface,
	n notifier.Notifier,
	window time.Duration,
) *MatchingService {
	if window <= 0 {
		window = DefaultMatchWindow
	}
	return &MatchingService{
		rideRepo:  rideRepo,
		userRepo:  userRepo,
		lockStore: lockStore,
		notifier:  n,
		window:    window,
	}
}

// Match finds a compatible pending ride for the given one and atomically
// cross-links both as matched, then introduces the two riders to each
// other by SMS. Returns ErrNoMatchFound when no candidate exists or every
// candidate was claimed by a concurrent request.
func (s *MatchingService) Match(ctx context.Context, ride *domain.Ride) (*MatchResult, error) {
	// Serialize matchers on the same directed route. The lock is an
	// optimization: if it cannot be taken we proceed anyway and rely on
	// the repository's compare-and-swap to reject double claims.
	if s.lockStore != nil {
		from, to := string(ride.FromLocation), string(ride.ToLocation)
		if locked, err := s.lockStore.AcquireRouteLock(ctx, from, to, routeLockTTL); err == nil && locked {
			defer func() { _ = s.lockStore.ReleaseRouteLock(ctx, from, to) }()
		}
	}

	candidates, err := s.rideRepo.FindMatchCandidates(ctx, repository.MatchQuery{
		RideID:      ride.ID,
		UserID:      ride.UserID,
		From:        ride.FromLocation,
		To:          ride.ToLocation,
		WindowStart: ride.DepartureTime.Add(-s.window),
		WindowEnd:   ride.DepartureTime.Add(s.window),
	})
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	for _, candidate := range candidates {
		if !CompatibleRides(ride, candidate, s.window) {
			continue
		}

		err := s.rideRepo.MatchPair(ctx, ride.ID, candidate.ID)
		if errors.Is(err, repository.ErrRideNotPending) {
			// Either the candidate was claimed by a concurrent matcher or
			// our own ride was. Re-check which before trying the next one.
			fresh, ferr := s.rideRepo.GetByID(ctx, ride.ID)
			if ferr != nil {
				return nil, ferr
			}
			if fresh.Status != domain.RideStatusPending {
				return nil, ErrNoMatchFound
			}
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("match pair: %w", err)
		}

		ride.Status = domain.RideStatusMatched
		ride.MatchedRideID = candidate.ID
		candidate.Status = domain.RideStatusMatched
		candidate.MatchedRideID = ride.ID

		result := &MatchResult{Ride: ride, Partner: candidate}
		s.notifyMatched(ctx, result)
		return result, nil
	}

	return nil, ErrNoMatchFound
}

// notifyMatched introduces the two riders to each other. The match is
// already committed; delivery failures are logged and swallowed, and each
// recipient is attempted independently. A failed user load only silences
// that one recipient; the other side still gets its introduction, with a
// generic body when the counterpart's record could not be read.
func (s *MatchingService) notifyMatched(ctx context.Context, result *MatchResult) {
	rider, err := s.userRepo.GetByID(ctx, result.Ride.UserID)
	if err != nil {
		log.Printf("match notification: load user %s: %v", result.Ride.UserID, err)
	}
	partner, err := s.userRepo.GetByID(ctx, result.Partner.UserID)
	if err != nil {
		log.Printf("match notification: load user %s: %v", result.Partner.UserID, err)
	}
	result.PartnerUser = partner

	if rider != nil {
		if err := s.notifier.Send(ctx, rider.PhoneNumber, msgMatched(result.Ride, partner)); err != nil {
			log.Printf("match notification to %s failed: %v", rider.PhoneNumber, err)
		}
	}
	if partner != nil {
		if err := s.notifier.Send(ctx, partner.PhoneNumber, msgMatched(result.Partner, rider)); err != nil {
			log.Printf("match notification to %s failed: %v", partner.PhoneNumber, err)
		}
	}
}

// CompatibleRides reports whether two rides can be paired: both pending,
// different users, identical directed route, departures within the window
// of each other (inclusive).
func CompatibleRides(a, b *domain.Ride, window time.Duration) bool {
	if a.ID == b.ID || a.UserID == b.UserID {
		return false
	}
	if a.Status != domain.RideStatusPending || b.Status != domain.RideStatusPending {
		return false
	}
	if a.FromLocation != b.FromLocation || a.ToLocation != b.ToLocation {
		return false
	}

	diff := a.DepartureTime.Sub(b.DepartureTime)
	if diff < 0 {
		diff = -diff
	}
	return diff <= window
}

// SelectCandidate returns the first candidate compatible with ride, in the
// order given. Candidates from the repository arrive oldest-created first,
// so the longest-waiting rider wins ties.
func SelectCandidate(ride *domain.Ride, candidates []*domain.Ride, window time.Duration) *domain.Ride {
	for _, c := range candidates {
		if CompatibleRides(ride, c, window) {
			return c
		}
	}
	return nil
}
