// Package mail sends transactional email. Delivery is best-effort: callers
// log failures and never fail the triggering operation on them.
package mail

import gomail "gopkg.in/gomail.v2"

type Sender interface {
	Send(to, subject, htmlBody string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(host string, port int, user, pass, from string) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   from,
	}
}

func (s *smtpSender) Send(to, subject, htmlBody string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)
	return s.dialer.DialAndSend(m)
}

// Noop is used when SMTP is not configured (local dev, tests).
type Noop struct{}

func (Noop) Send(string, string, string) error { return nil }
