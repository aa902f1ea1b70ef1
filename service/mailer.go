package service

import (
	"context"
	"fmt"

	mail "github.com/go-mail/mail/v2"
	"github.com/kevinaaaquil/shelf/models"
)

// Mailer tells moderators about reviews waiting in the pending state.
type Mailer struct {
	dialer *mail.Dialer
	from   string
	to     string
}

func NewMailer(host string, port int, username, password, from, to string) *Mailer {
	d := mail.NewDialer(host, port, username, password)
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	if from == "" {
		from = username
	}
	return &Mailer{dialer: d, from: from, to: to}
}

func (m *Mailer) ReviewPending(_ context.Context, review *models.Review) error {
	return m.dialer.DialAndSend(reviewPendingMessage(m.from, m.to, review))
}

func reviewPendingMessage(from, to string, review *models.Review) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("New review pending: %s", review.BookTitle))
	msg.SetBody("text/plain", fmt.Sprintf(
		"%s <%s> rated %q %.1f.\n\n%s\n\nReview id: %s\n",
		review.UserName, review.UserEmail, review.BookTitle, review.Rating, review.ReviewText, review.ID.Hex(),
	))
	return msg
}
