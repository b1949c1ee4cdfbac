package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/ChasingCode34/trip-sync/internal/domain"
	"github.com/ChasingCode34/trip-sync/internal/extractor"
	"github.com/ChasingCode34/trip-sync/internal/notifier"
	"github.com/ChasingCode34/trip-sync/internal/repository"
)

// RideService owns the ride lifecycle: creation with the one-active-ride
// rule, lazy expiry of elapsed rides, and the cancellation/rematch cascade.
type RideService struct {
	rideRepo  repository.RideRepository
	userRepo  repository.UserRepository
	matcher   MatcherInterface
	extractor extractor.Extractor
	notifier  notifier.Notifier

	// now is replaceable in tests.
	now func() time.Time
}

// NewRideService creates a new RideService.
func NewRideService(
	rideRepo repository.RideRepository,
	userRepo repository.UserRepository,
	matcher MatcherInterface,
	ext extractor.Extractor,
	n notifier.Notifier,
) *RideService {
	return &RideService{
		rideRepo:  rideRepo,
		userRepo:  userRepo,
		matcher:   matcher,
		extractor: ext,
		notifier:  n,
		now:       time.Now,
	}
}

// sweepPast expires the user's elapsed rides. It runs before every
// active-ride check so a stale ride never blocks a new request and never
// participates in matching.
func (s *RideService) sweepPast(ctx context.Context, userID string) {
	if n, err := s.rideRepo.SweepPast(ctx, userID, s.now()); err != nil {
		log.Printf("sweep past rides for user %s: %v", userID, err)
	} else if n > 0 {
		log.Printf("expired %d past ride(s) for user %s", n, userID)
	}
}

// CreateRide handles a verified user's free-text ride request and returns
// the reply. At most one ride is created; if the user already has an
// active ride the call is a no-op with an informative reply.
func (s *RideService) CreateRide(ctx context.Context, user *domain.User, body string) (string, error) {
	s.sweepPast(ctx, user.ID)

	active, err := s.rideRepo.GetActiveForUser(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("check active ride: %w", err)
	}
	if active != nil {
		return msgAlreadyHaveRide(active), nil
	}

	trip, err := s.extractor.Extract(ctx, body, s.now())
	if err != nil {
		// Any extraction failure means the same thing to the user: we
		// could not understand the request, and no ride was created.
		log.Printf("trip extraction failed for user %s: %v", user.ID, err)
		return msgRephrase(), nil
	}

	ride := &domain.Ride{
		ID:              uuid.New().String(),
		UserID:          user.ID,
		OriginalMessage: body,
		FromLocation:    trip.From,
		ToLocation:      trip.To,
		DepartureTime:   trip.DepartureTime,
		PartySize:       1,
		Status:          domain.RideStatusPending,
		CreatedAt:       s.now(),
	}
	if err := s.rideRepo.Create(ctx, ride); err != nil {
		return "", fmt.Errorf("create ride: %w", err)
	}

	result, err := s.matcher.Match(ctx, ride)
	if err != nil {
		if !errors.Is(err, ErrNoMatchFound) {
			// The ride exists and is pending; a matching failure should
			// not turn a saved request into an error for the user.
			log.Printf("matching failed for ride %s: %v", ride.ID, err)
		}
		return msgRideSaved(ride), nil
	}
	return msgMatched(result.Ride, result.PartnerUser), nil
}

// Cancel cancels the user's active ride and runs the rematch cascade for
// its partner, if any.
func (s *RideService) Cancel(ctx context.Context, user *domain.User) (string, error) {
	s.sweepPast(ctx, user.ID)

	active, err := s.rideRepo.GetActiveForUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return msgNothingToCancel(), nil
		}
		return "", fmt.Errorf("check active ride: %w", err)
	}

	partnerID := ""
	if active.Status == domain.RideStatusMatched {
		partnerID = active.MatchedRideID
	}

	if err := s.rideRepo.CancelWithRelease(ctx, active.ID, partnerID); err != nil {
		return "", fmt.Errorf("cancel ride: %w", err)
	}

	if partnerID != "" {
		s.rematchPartner(ctx, partnerID)
	}
	return msgCancelled(), nil
}

// rematchPartner immediately searches a new match for a ride freed by its
// partner's cancellation. The ride is re-fetched so the search runs on
// committed state, not a stale in-memory copy. Failures here never fail
// the cancellation: the cancel is already durable.
func (s *RideService) rematchPartner(ctx context.Context, partnerRideID string) {
	partner, err := s.rideRepo.GetByID(ctx, partnerRideID)
	if err != nil {
		log.Printf("rematch: reload ride %s: %v", partnerRideID, err)
		return
	}
	if partner.Status != domain.RideStatusPending {
		return
	}

	if _, err := s.matcher.Match(ctx, partner); err == nil {
		// Match notifies both sides itself.
		return
	} else if !errors.Is(err, ErrNoMatchFound) {
		log.Printf("rematch for ride %s: %v", partner.ID, err)
	}

	partnerUser, err := s.userRepo.GetByID(ctx, partner.UserID)
	if err != nil {
		log.Printf("rematch notice: load user %s: %v", partner.UserID, err)
		return
	}
	if err := s.notifier.Send(ctx, partnerUser.PhoneNumber, msgPartnerStillWaiting(partner)); err != nil {
		log.Printf("rematch notice to %s failed: %v", partnerUser.PhoneNumber, err)
	}
}

// Status returns a summary of the user's active ride.
func (s *RideService) Status(ctx context.Context, user *domain.User) (string, error) {
	s.sweepPast(ctx, user.ID)

	active, err := s.rideRepo.GetActiveForUser(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return msgNoActiveRide(), nil
		}
		return "", fmt.Errorf("check active ride: %w", err)
	}
	return msgStatus(active), nil
}
