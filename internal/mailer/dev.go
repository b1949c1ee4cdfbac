package mailer

import "log"

// DevMailer logs the code instead of sending it. Used when SMTP is not
// configured so development and misconfigured environments keep working.
type DevMailer struct{}

// NewDevMailer creates a log-only mailer.
func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendVerificationCode(toEmail, code string) error {
	log.Printf("[EMAIL-DEBUG] SMTP not configured; would have sent code %s to %s", code, toEmail)
	return nil
}
