// Package mailer delivers verification codes to institutional email
// addresses. The concrete implementation is chosen once at startup:
// SMTP when credentials are configured, otherwise a log-only mailer so an
// unconfigured environment degrades instead of erroring.
package mailer

// Mailer sends a verification code to an email address.
type Mailer interface {
	SendVerificationCode(toEmail, code string) error
}
