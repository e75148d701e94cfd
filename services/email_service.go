package services

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"socialspace-api/config"
)

type EmailService struct {
	config *config.Config
	dialer *gomail.Dialer
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config: cfg,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
	}
}

// SendWelcomeEmail greets a freshly registered user. Failures are the
// caller's to log; registration never depends on the mail going out.
func (es *EmailService) SendWelcomeEmail(email, username string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", es.config.FromName, es.config.FromEmail))
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome to SocialSpace")
	m.SetBody("text/html", fmt.Sprintf(`
		<h2>Hi %s,</h2>
		<p>Your account is ready. Find your friends, follow people you like
		and start a conversation.</p>
		<p>— The SocialSpace team</p>
	`, username))

	return es.dialer.DialAndSend(m)
}
