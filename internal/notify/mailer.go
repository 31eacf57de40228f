package notify

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/Roja-08/Scout-Nallur/internal/qr"
)

// Mailer sends rendered notifications through an SMTP relay. One instance is
// constructed at worker start and reused; there is no module-level transporter.
type Mailer struct {
	host     string
	port     int
	user     string
	pass     string
	fromName string
	fromAddr string
	logger   *slog.Logger
}

// NewMailer creates a mailer for the given SMTP relay.
func NewMailer(host string, port int, user, pass, fromName, fromAddr string, logger *slog.Logger) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		user:     user,
		pass:     pass,
		fromName: fromName,
		fromAddr: fromAddr,
		logger:   logger,
	}
}

// Process renders and sends one notification job.
func (m *Mailer) Process(job Job) error {
	email, err := Render(job, time.Now())
	if err != nil {
		return err
	}
	if job.QRCode != "" && (job.Kind == KindRegistration || job.Kind == KindResendQR) {
		png, err := qr.PNGFromDataURL(job.QRCode)
		if err != nil {
			m.logger.Warn("qr attachment decode failed, sending without it",
				slog.String("to", job.To), slog.String("error", err.Error()))
		} else {
			email.Attachment = &Attachment{Filename: "scout-qr-code.png", Content: png}
		}
	}
	return m.Send(job.To, email)
}

// Send dispatches a rendered email.
func (m *Mailer) Send(to string, email Email) error {
	if m.host == "" || m.fromAddr == "" {
		m.logger.Warn("smtp config missing, skip notification", slog.String("to", to))
		return nil
	}
	if strings.TrimSpace(to) == "" {
		m.logger.Warn("email recipient empty, skip notification")
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromAddr, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", email.Subject)
	if email.HTML != "" {
		msg.SetBody("text/html", email.HTML)
		if email.Text != "" {
			msg.AddAlternative("text/plain", email.Text)
		}
	} else {
		msg.SetBody("text/plain", email.Text)
	}
	if email.Attachment != nil {
		content := email.Attachment.Content
		msg.Attach(email.Attachment.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(content))
			return err
		}))
	}

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}

	m.logger.Info("email sent", slog.String("to", to), slog.String("subject", email.Subject))
	return nil
}
