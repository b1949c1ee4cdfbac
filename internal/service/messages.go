package service

import (
	"fmt"
	"time"

	"github.com/ChasingCode34/trip-sync/internal/domain"
)

// Reply templates. Every inbound message gets exactly one of these back;
// the bot never answers with silence.

func msgNameRejected() string {
	return "Welcome to TrypSync! 👋 Please reply with your full name, first and last, e.g. 'Jane Doe', " +
		"so other riders know who they're matched with."
}

func msgAskEmail(name string) string {
	return fmt.Sprintf("Thanks, %s! Now reply with your school email so we can verify you're part of the community.", name)
}

func msgEmailMalformed() string {
	return "That doesn't look like an email address. Please reply with your school email, e.g. jane.doe@emory.edu."
}

func msgEmailWrongDomain(domains []string) string {
	return fmt.Sprintf(
		"TrypSync is currently only available to students at %s. Please reply with a valid school email.",
		joinDomains(domains))
}

func msgEmailTaken() string {
	return "That email is already registered to another account. Please reply with your own school email."
}

func msgCodeSent(email string) string {
	return fmt.Sprintf("Thanks! We sent a 6-digit code to %s. Reply with that code here to verify your account.", email)
}

func msgCodeWrong(email string) string {
	return fmt.Sprintf("That code is incorrect. Please reply with the 6-digit code we sent to %s.", email)
}

func msgVerified() string {
	return "You're verified ✅. From now on, just text us your ride requests.\n\n" +
		"Example: 'leaving at 3 PM on 11/16 from Emory to airport'.\n" +
		"Reply 'status' to see your ride, 'cancel' to cancel it."
}

func msgRephrase() string {
	return "I couldn't understand your date/time 😅.\n\n" +
		"Please send something like: 'leaving at 3 PM on 11/16 from Emory to airport'."
}

func msgAlreadyHaveRide(ride *domain.Ride) string {
	return fmt.Sprintf(
		"You already have a ride on file.\n\nDeparture: %s %s → %s.\n"+
			"If you need to change it, reply 'cancel' and then send a new request.",
		formatDeparture(ride.DepartureTime), ride.FromLocation, ride.ToLocation)
}

func msgRideSaved(ride *domain.Ride) string {
	return fmt.Sprintf(
		"Got it ✅ Your ride request is saved.\n\nDeparture: %s %s → %s.\n"+
			"We'll match you with another student as soon as someone compatible joins.",
		formatDeparture(ride.DepartureTime), ride.FromLocation, ride.ToLocation)
}

func msgMatched(ride *domain.Ride, partner *domain.User) string {
	if partner == nil {
		return fmt.Sprintf(
			"Good news! 🎉 We found another student with a similar ride.\n\n"+
				"Your ride: %s %s → %s.\nWe'll introduce you both shortly so you can coordinate.",
			formatDeparture(ride.DepartureTime), ride.FromLocation, ride.ToLocation)
	}
	return fmt.Sprintf(
		"Good news! 🎉 We matched you with %s for a similar ride.\n\n"+
			"Your ride: %s %s → %s.\nYou can reach them at %s to coordinate.",
		partner.FullName, formatDeparture(ride.DepartureTime), ride.FromLocation, ride.ToLocation, partner.PhoneNumber)
}

func msgStatus(ride *domain.Ride) string {
	return fmt.Sprintf("Your ride: %s %s → %s (%s).",
		formatDeparture(ride.DepartureTime), ride.FromLocation, ride.ToLocation, ride.Status)
}

func msgNoActiveRide() string {
	return "You don't have an active ride. Text us a request like 'leaving at 3 PM on 11/16 from Emory to airport'."
}

func msgNothingToCancel() string {
	return "You don't have an active ride to cancel."
}

func msgCancelled() string {
	return "Your ride has been cancelled. Text us whenever you need a new one."
}

func msgPartnerStillWaiting(ride *domain.Ride) string {
	return fmt.Sprintf(
		"Heads up: your ride partner had to cancel. Your request (%s %s → %s) is back in the queue "+
			"and we'll text you as soon as we find someone new.",
		formatDeparture(ride.DepartureTime), ride.FromLocation, ride.ToLocation)
}

// TryAgainReply is the fallback reply the transport layer uses when
// request handling fails internally; the user still gets an answer.
func TryAgainReply() string {
	return "Sorry, something went wrong on our end. Please try again in a moment."
}

// formatDeparture renders a departure instant for SMS, e.g. "11/16 03:30 PM".
func formatDeparture(t time.Time) string {
	return t.Format("01/02 03:04 PM")
}

func joinDomains(domains []string) string {
	switch len(domains) {
	case 0:
		return "participating schools"
	case 1:
		return domains[0]
	default:
		out := domains[0]
		for _, d := range domains[1 : len(domains)-1] {
			out += ", " + d
		}
		return out + " or " + domains[len(domains)-1]
	}
}
