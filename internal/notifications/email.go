package notifications

import (
	"context"
	"fmt"

	"github.com/palma21/yt-analysis-bot/internal/models"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// EmailNotifier sends analyses over SMTP
type EmailNotifier struct {
	from string
	to   string
	send func(m *gomail.Message) error
}

var _ Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier creates a new e-mail notifier
func NewEmailNotifier(host string, port int, username, password, to string) *EmailNotifier {
	dialer := gomail.NewDialer(host, port, username, password)
	return &EmailNotifier{
		from: username,
		to:   to,
		send: func(m *gomail.Message) error { return dialer.DialAndSend(m) },
	}
}

// Notify mails the formatted analysis of a video
func (e *EmailNotifier) Notify(ctx context.Context, video models.Video, analysis string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.to)
	m.SetHeader("Subject", "Nuevo análisis: "+video.Title)
	m.SetBody("text/plain", fmt.Sprintf("%s\n%s\n\n%s", video.Title, video.Link, analysis))
	m.AddAlternative("text/html", emailHTML(video, analysis))

	if err := e.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	logrus.WithField("video_id", video.ID).Infof("Sent analysis by email to %s", e.to)
	return nil
}

func emailHTML(video models.Video, analysis string) string {
	body := BuildMessage(video, analysis)
	return "<html><body><div style=\"font-family: Arial, sans-serif; white-space: pre-wrap;\">" +
		body + "</div></body></html>"
}
