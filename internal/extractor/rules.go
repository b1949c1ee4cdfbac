package extractor

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ChasingCode34/trip-sync/internal/domain"
)

var (
	timePattern    = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	datePattern    = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
	weekdayPattern = regexp.MustCompile(`\b(?:(this|next)\s+)?(sunday|monday|tuesday|wednesday|thursday|friday|saturday)\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Rules is a deterministic extractor built on regular expressions for the
// date/time and keyword detection for the route. It understands messages
// like "leaving at 3 PM on 11/16 from Emory to airport", "11/16 3:30pm",
// "airport to emory tomorrow 8am" and "this friday 5pm".
type Rules struct {
	loc *time.Location
}

// NewRules creates a rule-based extractor. Departure instants are resolved
// against wall-clock time in loc.
func NewRules(loc *time.Location) *Rules {
	if loc == nil {
		loc = time.Local
	}
	return &Rules{loc: loc}
}

// Extract implements Extractor.
func (r *Rules) Extract(ctx context.Context, text string, now time.Time) (*domain.Trip, error) {
	lower := strings.ToLower(text)
	now = now.In(r.loc)

	hour, minute, ok := parseTimeOfDay(lower)
	if !ok {
		return nil, ErrNoDepartureTime
	}

	day, err := r.parseDay(lower, now, hour, minute)
	if err != nil {
		return nil, err
	}

	departure := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, r.loc)
	from, to := ParseRoute(text)

	return &domain.Trip{
		DepartureTime: departure,
		From:          from,
		To:            to,
	}, nil
}

// parseTimeOfDay finds a 12-hour clock time like "3 pm", "3:30pm", "11:05 am".
func parseTimeOfDay(lower string) (hour, minute int, ok bool) {
	m := timePattern.FindStringSubmatch(lower)
	if m == nil {
		return 0, 0, false
	}

	hour, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour < 1 || hour > 12 || minute > 59 {
		return 0, 0, false
	}

	if m[3] == "pm" && hour != 12 {
		hour += 12
	}
	if m[3] == "am" && hour == 12 {
		hour = 0
	}
	return hour, minute, true
}

// parseDay resolves the calendar day the message refers to. Relative words
// resolve against now and never land in the past; explicit dates are taken
// as written, defaulting the year to the current one.
func (r *Rules) parseDay(lower string, now time.Time, hour, minute int) (time.Time, error) {
	if m := datePattern.FindStringSubmatch(lower); m != nil {
		month, _ := strconv.Atoi(m[1])
		dayNum, _ := strconv.Atoi(m[2])
		year := now.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}

		if month < 1 || month > 12 {
			return time.Time{}, ErrInvalidDate
		}
		day := time.Date(year, time.Month(month), dayNum, 0, 0, 0, 0, r.loc)
		// time.Date normalizes overflow (11/31 becomes 12/1); reject that.
		if day.Month() != time.Month(month) || day.Day() != dayNum {
			return time.Time{}, ErrInvalidDate
		}
		return day, nil
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.loc)

	if strings.Contains(lower, "tomorrow") {
		return today.AddDate(0, 0, 1), nil
	}

	if strings.Contains(lower, "today") || strings.Contains(lower, "tonight") {
		departure := today.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
		if !departure.After(now) {
			return time.Time{}, ErrPastDeparture
		}
		return today, nil
	}

	if m := weekdayPattern.FindStringSubmatch(lower); m != nil {
		target := weekdays[m[2]]
		day := today
		for day.Weekday() != target {
			day = day.AddDate(0, 0, 1)
		}
		if m[1] == "next" {
			return day.AddDate(0, 0, 7), nil
		}
		// "this friday" on a Friday afternoon means next week's, not a
		// departure already behind us.
		departure := day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
		if !departure.After(now) {
			day = day.AddDate(0, 0, 7)
		}
		return day, nil
	}

	return time.Time{}, ErrNoDate
}
