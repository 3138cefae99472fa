package smtp

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Mailer delivers verification emails over plain SMTP. It is the
// default transport; see external/resend for the HTTP alternative.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, toEmail, verifyURL string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", "Verify your email")
	msg.SetBody("text/html", fmt.Sprintf(`
		<h1>Welcome!</h1>
		<p>Please verify your email by clicking the link below:</p>
		<p><a href="%s">Verify Email</a></p>
		<p>The link is valid for 24 hours.</p>
	`, verifyURL))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", toEmail, err)
	}
	return nil
}
