package utils

import (
	"gopkg.in/gomail.v2"
)

// Mailer sends best-effort confirmation mail over SMTP.
type Mailer struct {
	host string
	port int
	user string
	pass string
}

func NewMailer(host string, port int, user, pass string) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass}
}

// Configured reports whether SMTP credentials were provided.
func (m *Mailer) Configured() bool {
	return m != nil && m.host != "" && m.user != ""
}

func (m *Mailer) SendEmail(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.user)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	return d.DialAndSend(msg)
}
