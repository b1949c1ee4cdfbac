package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPMailer sends verification codes over SMTP with STARTTLS.
type SMTPMailer struct {
	host string
	port int
	from string
	user string
	pass string
}

// NewSMTPMailer creates an SMTP mailer.
func NewSMTPMailer(host string, port int, from, user, pass string) *SMTPMailer {
	if from == "" {
		from = user
	}
	return &SMTPMailer{
		host: strings.TrimSpace(host),
		port: port,
		from: strings.TrimSpace(from),
		user: strings.TrimSpace(user),
		pass: strings.TrimSpace(pass),
	}
}

// SendVerificationCode emails the 6-digit code. The code travels only by
// email, never by SMS, so possession of the inbox is what gets verified.
func (s *SMTPMailer) SendVerificationCode(toEmail, code string) error {
	toEmail = strings.TrimSpace(toEmail)
	if toEmail == "" {
		return fmt.Errorf("empty recipient email")
	}

	body := fmt.Sprintf("Hi,\r\n\r\n"+
		"Your TrypSync verification code is: %s\r\n\r\n"+
		"Reply with this code by text to complete verification.\r\n"+
		"If you did not request this, you can ignore this email.\r\n\r\n"+
		"Thanks,\r\nTrypSync\r\n", code)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", toEmail)
	fmt.Fprintf(&msg, "Subject: Your TrypSync Verification Code\r\n")
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.user != "" {
		auth = smtp.PlainAuth("", s.user, s.pass, s.host)
	}
	return smtp.SendMail(addr, auth, s.from, []string{toEmail}, []byte(msg.String()))
}
