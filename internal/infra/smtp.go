package infra

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"

	"joyeriapos/internal/config"
)

// Mailer sends tickets by e-mail through the configured SMTP relay. Sends go
// through a Breaker so a dead relay does not stall the job workers.
type Mailer struct {
	host     string
	user     string
	password string
	addr     string
	breaker  *Breaker
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		breaker:  NewBreaker(5, time.Minute),
	}
}

// Configurado reports whether an SMTP host was set.
func (m *Mailer) Configurado() bool { return m.host != "" }

// EnviarTicket sends body to "to" with the PDF at pdfPath attached.
func (m *Mailer) EnviarTicket(to, subject, body, pdfPath string) error {
	e := email.NewEmail()
	e.From = m.user
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	return m.breaker.Do(func() error { return e.Send(m.addr, auth) })
}
