package tests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ChasingCode34/trip-sync/internal/domain"
	"github.com/ChasingCode34/trip-sync/internal/repository"
	"github.com/ChasingCode34/trip-sync/internal/service"
)

func pendingRide(id, userID string, from, to domain.Location, departure, created time.Time) *domain.Ride {
	return &domain.Ride{
		ID:            id,
		UserID:        userID,
		FromLocation:  from,
		ToLocation:    to,
		DepartureTime: departure,
		PartySize:     1,
		Status:        domain.RideStatusPending,
		CreatedAt:     created,
	}
}

func newMatchingHarness() (*MockRideRepository, *MockUserRepository, *MockLockStore, *MockNotifier, *service.MatchingService) {
	rides := NewMockRideRepository()
	users := NewMockUserRepository()
	locks := NewMockLockStore()
	notifier := NewMockNotifier()
	m := service.NewMatchingService(rides, users, locks, notifier, service.DefaultMatchWindow)
	return rides, users, locks, notifier, m
}

func TestMatching_PairsSameRouteWithinWindow(t *testing.T) {
	ctx := context.Background()
	rides, users, _, notifier, m := newMatchingHarness()

	departure := time.Now().Add(4 * time.Hour)
	users.AddUser(&domain.User{ID: "user-a", PhoneNumber: "+14045550001", FullName: "Alice Ames", Verified: true})
	users.AddUser(&domain.User{ID: "user-b", PhoneNumber: "+14045550002", FullName: "Bob Brown", Verified: true})

	waiting := pendingRide("ride-b", "user-b", domain.LocationEmory, domain.LocationAirport,
		departure.Add(20*time.Minute), time.Now().Add(-time.Hour))
	rides.AddRide(waiting)

	mine := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())
	rides.AddRide(mine)

	result, err := m.Match(ctx, mine)
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if result.Partner.ID != "ride-b" {
		t.Errorf("expected partner ride-b, got %s", result.Partner.ID)
	}
	if result.PartnerUser == nil || result.PartnerUser.ID != "user-b" {
		t.Errorf("expected partner user user-b, got %+v", result.PartnerUser)
	}

	// Both sides transition and cross-reference each other.
	a := rides.GetRide("ride-a")
	b := rides.GetRide("ride-b")
	if a.Status != domain.RideStatusMatched || b.Status != domain.RideStatusMatched {
		t.Errorf("expected both matched, got %s/%s", a.Status, b.Status)
	}
	if a.MatchedRideID != "ride-b" || b.MatchedRideID != "ride-a" {
		t.Errorf("expected symmetric links, got a→%s b→%s", a.MatchedRideID, b.MatchedRideID)
	}

	// Both riders get an introduction.
	if len(notifier.MessagesTo("+14045550001")) != 1 {
		t.Errorf("expected 1 message to rider a, got %d", len(notifier.MessagesTo("+14045550001")))
	}
	if len(notifier.MessagesTo("+14045550002")) != 1 {
		t.Errorf("expected 1 message to rider b, got %d", len(notifier.MessagesTo("+14045550002")))
	}
}

func TestMatching_RejectsOppositeDirection(t *testing.T) {
	ctx := context.Background()
	rides, _, _, _, m := newMatchingHarness()

	departure := time.Now().Add(4 * time.Hour)
	rides.AddRide(pendingRide("ride-b", "user-b", domain.LocationAirport, domain.LocationEmory, departure, time.Now().Add(-time.Hour)))

	mine := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())
	rides.AddRide(mine)

	if _, err := m.Match(ctx, mine); !errors.Is(err, service.ErrNoMatchFound) {
		t.Errorf("expected ErrNoMatchFound for opposite directions, got %v", err)
	}
	if rides.GetRide("ride-a").Status != domain.RideStatusPending {
		t.Error("expected ride-a still pending")
	}
}

func TestMatching_WindowBoundary(t *testing.T) {
	ctx := context.Background()
	departure := time.Now().Add(6 * time.Hour)

	cases := []struct {
		name   string
		offset time.Duration
		match  bool
	}{
		{"29 minutes apart", 29 * time.Minute, true},
		{"exactly 30 minutes apart", 30 * time.Minute, true},
		{"31 minutes apart", 31 * time.Minute, false},
		{"30 minutes earlier", -30 * time.Minute, true},
		{"31 minutes earlier", -31 * time.Minute, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rides, users, _, _, m := newMatchingHarness()
			users.AddUser(&domain.User{ID: "user-a", PhoneNumber: "+14045550001", FullName: "Alice Ames"})
			users.AddUser(&domain.User{ID: "user-b", PhoneNumber: "+14045550002", FullName: "Bob Brown"})

			rides.AddRide(pendingRide("ride-b", "user-b", domain.LocationEmory, domain.LocationAirport,
				departure.Add(tc.offset), time.Now().Add(-time.Hour)))
			mine := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())
			rides.AddRide(mine)

			_, err := m.Match(ctx, mine)
			if tc.match && err != nil {
				t.Errorf("expected match, got %v", err)
			}
			if !tc.match && !errors.Is(err, service.ErrNoMatchFound) {
				t.Errorf("expected ErrNoMatchFound, got %v", err)
			}
		})
	}
}

func TestMatching_OldestCandidateWins(t *testing.T) {
	ctx := context.Background()
	rides, users, _, _, m := newMatchingHarness()

	departure := time.Now().Add(4 * time.Hour)
	base := time.Now().Add(-3 * time.Hour)
	users.AddUser(&domain.User{ID: "user-a", PhoneNumber: "+14045550001", FullName: "Alice Ames"})
	for i, id := range []string{"user-1", "user-2", "user-3"} {
		users.AddUser(&domain.User{ID: id, PhoneNumber: fmt.Sprintf("+140455501%02d", i), FullName: "Rider " + id})
	}

	// Three compatible candidates created at different times. The one
	// waiting longest wins, regardless of departure proximity.
	rides.AddRide(pendingRide("ride-newest", "user-1", domain.LocationEmory, domain.LocationAirport,
		departure, base.Add(2*time.Hour)))
	rides.AddRide(pendingRide("ride-oldest", "user-2", domain.LocationEmory, domain.LocationAirport,
		departure.Add(25*time.Minute), base))
	rides.AddRide(pendingRide("ride-middle", "user-3", domain.LocationEmory, domain.LocationAirport,
		departure.Add(5*time.Minute), base.Add(time.Hour)))

	mine := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())
	rides.AddRide(mine)

	result, err := m.Match(ctx, mine)
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if result.Partner.ID != "ride-oldest" {
		t.Errorf("expected oldest candidate to win, got %s", result.Partner.ID)
	}
}

func TestMatching_NeverMatchesOwnUser(t *testing.T) {
	ctx := context.Background()
	rides, _, _, _, m := newMatchingHarness()

	departure := time.Now().Add(4 * time.Hour)
	// Same user somehow holds another pending ride; it must not be picked.
	rides.AddRide(pendingRide("ride-dup", "user-a", domain.LocationEmory, domain.LocationAirport,
		departure, time.Now().Add(-time.Hour)))
	mine := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())
	rides.AddRide(mine)

	if _, err := m.Match(ctx, mine); !errors.Is(err, service.ErrNoMatchFound) {
		t.Errorf("expected ErrNoMatchFound, got %v", err)
	}
}

func TestMatching_SkipsNonPendingCandidates(t *testing.T) {
	ctx := context.Background()
	rides, users, _, _, m := newMatchingHarness()

	departure := time.Now().Add(4 * time.Hour)
	users.AddUser(&domain.User{ID: "user-a", PhoneNumber: "+14045550001", FullName: "Alice Ames"})
	users.AddUser(&domain.User{ID: "user-c", PhoneNumber: "+14045550003", FullName: "Cara Cole"})

	matched := pendingRide("ride-b", "user-b", domain.LocationEmory, domain.LocationAirport,
		departure, time.Now().Add(-2*time.Hour))
	matched.Status = domain.RideStatusMatched
	matched.MatchedRideID = "ride-x"
	rides.AddRide(matched)

	rides.AddRide(pendingRide("ride-c", "user-c", domain.LocationEmory, domain.LocationAirport,
		departure.Add(10*time.Minute), time.Now().Add(-time.Hour)))

	mine := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())
	rides.AddRide(mine)

	result, err := m.Match(ctx, mine)
	if err != nil {
		t.Fatalf("expected match with remaining pending ride, got %v", err)
	}
	if result.Partner.ID != "ride-c" {
		t.Errorf("expected ride-c, got %s", result.Partner.ID)
	}
	// The already-matched pair is untouched.
	if rides.GetRide("ride-b").MatchedRideID != "ride-x" {
		t.Error("expected existing match left intact")
	}
}

func TestMatching_LockFailureDoesNotBlockMatch(t *testing.T) {
	ctx := context.Background()
	rides, users, locks, _, m := newMatchingHarness()
	locks.ForceAcquireFailure = true

	departure := time.Now().Add(4 * time.Hour)
	users.AddUser(&domain.User{ID: "user-a", PhoneNumber: "+14045550001", FullName: "Alice Ames"})
	users.AddUser(&domain.User{ID: "user-b", PhoneNumber: "+14045550002", FullName: "Bob Brown"})
	rides.AddRide(pendingRide("ride-b", "user-b", domain.LocationEmory, domain.LocationAirport,
		departure, time.Now().Add(-time.Hour)))
	mine := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())
	rides.AddRide(mine)

	// The route lock is contention relief, not a correctness gate.
	if _, err := m.Match(ctx, mine); err != nil {
		t.Fatalf("expected match despite lock failure, got %v", err)
	}
}

func TestMatching_NotifiesReachableSideWhenPartnerRecordMissing(t *testing.T) {
	ctx := context.Background()
	rides, users, _, notifier, m := newMatchingHarness()

	departure := time.Now().Add(4 * time.Hour)
	// Only rider a's user record is loadable; rider b's is not.
	users.AddUser(&domain.User{ID: "user-a", PhoneNumber: "+14045550001", FullName: "Alice Ames"})

	rides.AddRide(pendingRide("ride-b", "user-b", domain.LocationEmory, domain.LocationAirport,
		departure, time.Now().Add(-time.Hour)))
	mine := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())
	rides.AddRide(mine)

	result, err := m.Match(ctx, mine)
	if err != nil {
		t.Fatalf("expected match, got %v", err)
	}
	if result.PartnerUser != nil {
		t.Errorf("expected no partner user, got %+v", result.PartnerUser)
	}

	// Rider a still gets an introduction (generic body, no partner name).
	msgs := notifier.MessagesTo("+14045550001")
	if len(msgs) != 1 || !strings.Contains(msgs[0].Body, "Good news") {
		t.Errorf("expected generic introduction to rider a, got %+v", msgs)
	}
	if notifier.SendCallCount != 1 {
		t.Errorf("expected exactly 1 send, got %d", notifier.SendCallCount)
	}
}

func TestMatching_OwnRideClaimedConcurrently(t *testing.T) {
	ctx := context.Background()
	rides, _, _, _, m := newMatchingHarness()

	departure := time.Now().Add(4 * time.Hour)
	rides.AddRide(pendingRide("ride-b", "user-b", domain.LocationEmory, domain.LocationAirport,
		departure, time.Now().Add(-time.Hour)))

	// Our ride was matched by another request between candidate listing and
	// the pair claim. The store copy is already matched; the in-memory copy
	// passed to Match is stale and still says pending.
	stored := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())
	stored.Status = domain.RideStatusMatched
	stored.MatchedRideID = "ride-z"
	rides.AddRide(stored)

	stale := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, time.Now())

	if _, err := m.Match(ctx, stale); !errors.Is(err, service.ErrNoMatchFound) {
		t.Errorf("expected ErrNoMatchFound when own ride already claimed, got %v", err)
	}
	// The waiting candidate must not have been consumed.
	if rides.GetRide("ride-b").Status != domain.RideStatusPending {
		t.Error("expected candidate still pending")
	}
}

func TestMatching_CandidateErrorPropagates(t *testing.T) {
	ctx := context.Background()
	rides, _, _, _, m := newMatchingHarness()
	rides.FindCandidatesError = ErrMockDBConstraint

	mine := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport,
		time.Now().Add(4*time.Hour), time.Now())
	rides.AddRide(mine)

	if _, err := m.Match(ctx, mine); !errors.Is(err, ErrMockDBConstraint) {
		t.Errorf("expected repository error to surface, got %v", err)
	}
}

func TestCompatibleRides(t *testing.T) {
	departure := time.Date(2026, 11, 16, 15, 0, 0, 0, time.UTC)

	a := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, departure.Add(-2*time.Hour))
	b := pendingRide("ride-b", "user-b", domain.LocationEmory, domain.LocationAirport, departure.Add(15*time.Minute), departure.Add(-time.Hour))

	if !service.CompatibleRides(a, b, 30*time.Minute) {
		t.Error("expected compatible")
	}

	cancelled := *b
	cancelled.Status = domain.RideStatusCancelled
	if service.CompatibleRides(a, &cancelled, 30*time.Minute) {
		t.Error("expected non-pending candidate rejected")
	}

	sameUser := *b
	sameUser.UserID = "user-a"
	if service.CompatibleRides(a, &sameUser, 30*time.Minute) {
		t.Error("expected same-user pair rejected")
	}
}

func TestSelectCandidate_IgnoresErrRideNotPendingRace(t *testing.T) {
	departure := time.Date(2026, 11, 16, 15, 0, 0, 0, time.UTC)
	ride := pendingRide("ride-a", "user-a", domain.LocationEmory, domain.LocationAirport, departure, departure.Add(-time.Hour))

	taken := pendingRide("ride-b", "user-b", domain.LocationEmory, domain.LocationAirport, departure, departure.Add(-3*time.Hour))
	taken.Status = domain.RideStatusMatched
	free := pendingRide("ride-c", "user-c", domain.LocationEmory, domain.LocationAirport, departure, departure.Add(-2*time.Hour))

	got := service.SelectCandidate(ride, []*domain.Ride{taken, free}, 30*time.Minute)
	if got == nil || got.ID != "ride-c" {
		t.Errorf("expected ride-c selected past the taken candidate, got %+v", got)
	}
}

func TestMatchQueryWindowIsInclusive(t *testing.T) {
	ctx := context.Background()
	rides := NewMockRideRepository()

	departure := time.Date(2026, 11, 16, 15, 0, 0, 0, time.UTC)
	rides.AddRide(pendingRide("ride-edge", "user-b", domain.LocationEmory, domain.LocationAirport,
		departure.Add(30*time.Minute), departure.Add(-time.Hour)))

	got, err := rides.FindMatchCandidates(ctx, repository.MatchQuery{
		RideID:      "ride-a",
		UserID:      "user-a",
		From:        domain.LocationEmory,
		To:          domain.LocationAirport,
		WindowStart: departure.Add(-30 * time.Minute),
		WindowEnd:   departure.Add(30 * time.Minute),
	})
	if err != nil {
		t.Fatalf("FindMatchCandidates: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected boundary candidate included, got %d candidates", len(got))
	}
}
