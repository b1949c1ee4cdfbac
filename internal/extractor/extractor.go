// Package extractor turns free-form ride request text into a structured
// trip. The caller treats every failure uniformly as "ask the user to
// rephrase"; the typed errors exist for logging and tests, not for
// branching user-visible behavior.
package extractor

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ChasingCode34/trip-sync/internal/domain"
)

var (
	// ErrNoDepartureTime is returned when no time of day can be found.
	ErrNoDepartureTime = errors.New("no departure time found")

	// ErrNoDate is returned when a time of day was found but no date.
	ErrNoDate = errors.New("no departure date found")

	// ErrInvalidDate is returned for dates that do not exist, e.g. 13/40.
	ErrInvalidDate = errors.New("invalid departure date")

	// ErrPastDeparture is returned when relative date words resolve to an
	// instant that has already passed. Extraction fails closed rather than
	// silently booking a ride in the past.
	ErrPastDeparture = errors.New("departure time already passed")

	// ErrUnavailable is returned by the disabled extractor and by backends
	// that cannot reach their service.
	ErrUnavailable = errors.New("trip extractor unavailable")
)

// Extractor extracts a structured trip from free text. The reference now
// anchors relative date words such as "today" and "tomorrow".
type Extractor interface {
	Extract(ctx context.Context, text string, now time.Time) (*domain.Trip, error)
}

// Disabled is the degraded extractor used when none is configured. It
// always fails so the caller asks the user to try again later instead of
// crashing.
type Disabled struct{}

func (Disabled) Extract(ctx context.Context, text string, now time.Time) (*domain.Trip, error) {
	return nil, ErrUnavailable
}

// airportKeywords are the aliases users write for the airport endpoint.
var airportKeywords = []string{"airport", "hartsfield", "jackson", "atl"}

// ParseRoute detects the from/to locations from the message. When both
// endpoints are mentioned, whichever appears first is the origin. A single
// mention implies the opposite endpoint as the counterpart, and a message
// naming neither defaults to Emory to the airport, the dominant direction.
func ParseRoute(text string) (domain.Location, domain.Location) {
	lower := strings.ToLower(text)

	emoryIdx := strings.Index(lower, "emory")
	airportIdx := -1
	for _, kw := range airportKeywords {
		if i := strings.Index(lower, kw); i != -1 && (airportIdx == -1 || i < airportIdx) {
			airportIdx = i
		}
	}

	switch {
	case emoryIdx != -1 && airportIdx != -1:
		if emoryIdx < airportIdx {
			return domain.LocationEmory, domain.LocationAirport
		}
		return domain.LocationAirport, domain.LocationEmory
	case airportIdx != -1:
		return domain.LocationAirport, domain.LocationAirport.Opposite()
	default:
		return domain.LocationEmory, domain.LocationEmory.Opposite()
	}
}

// MatchLocation maps a free-form location name onto a canonical endpoint.
// Returns false when the name resembles neither endpoint.
func MatchLocation(name string) (domain.Location, bool) {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "emory") {
		return domain.LocationEmory, true
	}
	for _, kw := range airportKeywords {
		if strings.Contains(lower, kw) {
			return domain.LocationAirport, true
		}
	}
	return "", false
}
