package tests

import (
	"strings"
	"testing"
	"time"

	"github.com/ChasingCode34/trip-sync/internal/domain"
)

// matchedPair seeds two rides already matched to each other.
func matchedPair(s *stack, departure time.Time) (*domain.Ride, *domain.Ride) {
	a := pendingRide("ride-a", "user-1", domain.LocationEmory, domain.LocationAirport, departure, time.Now().Add(-2*time.Hour))
	b := pendingRide("ride-b", "user-2", domain.LocationEmory, domain.LocationAirport, departure.Add(10*time.Minute), time.Now().Add(-time.Hour))
	a.Status = domain.RideStatusMatched
	a.MatchedRideID = b.ID
	b.Status = domain.RideStatusMatched
	b.MatchedRideID = a.ID
	s.rides.AddRide(a)
	s.rides.AddRide(b)
	return a, b
}

func TestCancel_NothingToCancel(t *testing.T) {
	s := newStack(&MockExtractor{})
	u := s.verifiedUser("user-1", "+14045550100", "Jane Doe")

	reply := s.send(t, u.PhoneNumber, "cancel")
	if !strings.Contains(reply, "don't have an active ride to cancel") {
		t.Errorf("expected nothing-to-cancel reply, got %q", reply)
	}
}

func TestCancel_PendingRide(t *testing.T) {
	departure := time.Now().Add(5 * time.Hour)
	s := newStack(&MockExtractor{})
	u := s.verifiedUser("user-1", "+14045550100", "Jane Doe")
	s.rides.AddRide(pendingRide("ride-a", u.ID, domain.LocationEmory, domain.LocationAirport, departure, time.Now()))

	reply := s.send(t, u.PhoneNumber, "cancel")
	if !strings.Contains(reply, "cancelled") {
		t.Errorf("expected cancelled reply, got %q", reply)
	}
	if got := s.rides.GetRide("ride-a").Status; got != domain.RideStatusCancelled {
		t.Errorf("expected cancelled status, got %s", got)
	}
	// No partner, no outbound SMS.
	if s.notifier.SendCallCount != 0 {
		t.Errorf("expected no notifications, got %d", s.notifier.SendCallCount)
	}
}

func TestCancel_MatchedRideReleasesPartner(t *testing.T) {
	departure := time.Now().Add(5 * time.Hour)
	s := newStack(&MockExtractor{})
	u := s.verifiedUser("user-1", "+14045550100", "Jane Doe")
	partner := s.verifiedUser("user-2", "+14045550200", "Bob Brown")

	matchedPair(s, departure)

	reply := s.send(t, u.PhoneNumber, "cancel")
	if !strings.Contains(reply, "cancelled") {
		t.Errorf("expected cancelled reply, got %q", reply)
	}

	a := s.rides.GetRide("ride-a")
	b := s.rides.GetRide("ride-b")
	if a.Status != domain.RideStatusCancelled {
		t.Errorf("expected ride-a cancelled, got %s", a.Status)
	}
	if b.Status != domain.RideStatusPending {
		t.Errorf("expected partner released to pending, got %s", b.Status)
	}
	if a.MatchedRideID != "" || b.MatchedRideID != "" {
		t.Errorf("expected partner links cleared, got a→%q b→%q", a.MatchedRideID, b.MatchedRideID)
	}

	// No third rider exists, so the partner is told they're back in the queue.
	msgs := s.notifier.MessagesTo(partner.PhoneNumber)
	if len(msgs) != 1 || !strings.Contains(msgs[0].Body, "back in the queue") {
		t.Errorf("expected still-waiting notice to partner, got %+v", msgs)
	}
}

func TestCancel_MatchedRideRematchesPartnerToThirdRider(t *testing.T) {
	departure := time.Now().Add(5 * time.Hour)
	s := newStack(&MockExtractor{})
	u := s.verifiedUser("user-1", "+14045550100", "Jane Doe")
	partner := s.verifiedUser("user-2", "+14045550200", "Bob Brown")
	third := s.verifiedUser("user-3", "+14045550300", "Cara Cole")

	matchedPair(s, departure)
	// A compatible third rider is waiting.
	s.rides.AddRide(pendingRide("ride-c", third.ID, domain.LocationEmory, domain.LocationAirport,
		departure.Add(20*time.Minute), time.Now().Add(-30*time.Minute)))

	s.send(t, u.PhoneNumber, "cancel")

	b := s.rides.GetRide("ride-b")
	c := s.rides.GetRide("ride-c")
	if b.Status != domain.RideStatusMatched || c.Status != domain.RideStatusMatched {
		t.Fatalf("expected partner rematched to third rider, got b=%s c=%s", b.Status, c.Status)
	}
	if b.MatchedRideID != "ride-c" || c.MatchedRideID != "ride-b" {
		t.Errorf("expected symmetric rematch links, got b→%s c→%s", b.MatchedRideID, c.MatchedRideID)
	}

	// Both remaining riders get an introduction; nobody gets the
	// back-in-the-queue notice.
	for _, phone := range []string{partner.PhoneNumber, third.PhoneNumber} {
		msgs := s.notifier.MessagesTo(phone)
		if len(msgs) != 1 || !strings.Contains(msgs[0].Body, "Good news") {
			t.Errorf("expected introduction to %s, got %+v", phone, msgs)
		}
	}
}

func TestCancel_RematchSkipsCancellerOwnNewRequest(t *testing.T) {
	departure := time.Now().Add(5 * time.Hour)
	s := newStack(&MockExtractor{})
	u := s.verifiedUser("user-1", "+14045550100", "Jane Doe")
	s.verifiedUser("user-2", "+14045550200", "Bob Brown")

	matchedPair(s, departure)

	s.send(t, u.PhoneNumber, "cancel")

	// The canceller's own cancelled ride must never be picked up again by
	// the partner's rematch search.
	b := s.rides.GetRide("ride-b")
	if b.MatchedRideID == "ride-a" {
		t.Error("expected partner not re-linked to the cancelled ride")
	}
	if s.rides.GetRide("ride-a").Status != domain.RideStatusCancelled {
		t.Error("expected cancelled ride to stay cancelled")
	}
}

func TestCancel_SecondCancelIsNoOp(t *testing.T) {
	departure := time.Now().Add(5 * time.Hour)
	s := newStack(&MockExtractor{})
	u := s.verifiedUser("user-1", "+14045550100", "Jane Doe")
	s.rides.AddRide(pendingRide("ride-a", u.ID, domain.LocationEmory, domain.LocationAirport, departure, time.Now()))

	s.send(t, u.PhoneNumber, "cancel")
	reply := s.send(t, u.PhoneNumber, "cancel")
	if !strings.Contains(reply, "don't have an active ride to cancel") {
		t.Errorf("expected nothing-to-cancel on repeat, got %q", reply)
	}
	if s.rides.CancelCallCount != 1 {
		t.Errorf("expected 1 cancel operation, got %d", s.rides.CancelCallCount)
	}
}

func TestCancel_CaseInsensitiveKeyword(t *testing.T) {
	departure := time.Now().Add(5 * time.Hour)
	s := newStack(&MockExtractor{})
	u := s.verifiedUser("user-1", "+14045550100", "Jane Doe")
	s.rides.AddRide(pendingRide("ride-a", u.ID, domain.LocationEmory, domain.LocationAirport, departure, time.Now()))

	reply := s.send(t, u.PhoneNumber, "  CANCEL ")
	if !strings.Contains(reply, "cancelled") {
		t.Errorf("expected cancelled reply for upper-case keyword, got %q", reply)
	}
}
