package domain

import "time"

// OnboardingState is the step a user is currently at in the onboarding
// flow. It is derived from which User fields are populated rather than
// stored, so it can never disagree with the record.
type OnboardingState string

const (
	OnboardingNeedName  OnboardingState = "NEED_NAME"
	OnboardingNeedEmail OnboardingState = "NEED_EMAIL"
	OnboardingNeedCode  OnboardingState = "NEED_CODE"
	OnboardingVerified  OnboardingState = "VERIFIED"
)

// User represents a rider identified by the phone number they text from.
type User struct {
	ID          string
	PhoneNumber string
	// FullName is set once during onboarding and immutable thereafter.
	FullName string
	// Email is the verified institutional email, lowercased, unique across users.
	Email string
	// VerificationCode is the outstanding 6-digit code, empty once verified.
	VerificationCode string
	Verified         bool
	CreatedAt        time.Time
}

// OnboardingState reports the next field onboarding needs from this user.
func (u *User) OnboardingState() OnboardingState {
	switch {
	case u.Verified:
		return OnboardingVerified
	case u.FullName == "":
		return OnboardingNeedName
	case u.Email == "":
		return OnboardingNeedEmail
	default:
		return OnboardingNeedCode
	}
}
