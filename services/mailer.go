// services/mailer.go
package services

import (
	"bytes"
	"io"

	"zuperbill-backend/config"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Sender is the outbound-mail contract the controllers depend on. Delivery is
// synchronous and single-attempt; failures surface to the caller.
type Sender interface {
	Send(to, subject, body string) error
	SendWithAttachment(to, subject, body string, attachment []byte, filename string) error
}

// Mailer sends over authenticated SMTP with implicit TLS, always BCCing the
// internal backup address.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	bcc    string
}

func NewMailer(cfg *config.Settings) *Mailer {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.SSL = true
	return &Mailer{
		dialer: dialer,
		from:   cfg.FromEmail,
		bcc:    cfg.SMTPBackup,
	}
}

func (m *Mailer) Send(to, subject, body string) error {
	return m.send(to, subject, body, nil, "")
}

func (m *Mailer) SendWithAttachment(to, subject, body string, attachment []byte, filename string) error {
	return m.send(to, subject, body, attachment, filename)
}

func (m *Mailer) send(to, subject, body string, attachment []byte, filename string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	if m.bcc != "" {
		msg.SetHeader("Bcc", m.bcc)
	}
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if attachment != nil {
		msg.Attach(filename,
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := io.Copy(w, bytes.NewReader(attachment))
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
		)
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		log.WithFields(log.Fields{"to": to, "subject": subject, "error": err}).Error("email send failed")
		return err
	}
	log.WithFields(log.Fields{"to": to, "subject": subject}).Info("email sent")
	return nil
}
