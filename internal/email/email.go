package email

import (
	"context"
	"fmt"
	"time"

	"tripmate/internal/config"
	"tripmate/internal/logger"
	"tripmate/internal/models"

	"github.com/mailgun/mailgun-go/v5"
)

type Service struct {
	client      mailgun.Mailgun
	domain      string
	senderEmail string
	senderName  string
	baseURL     string
	enabled     bool
}

func NewService(cfg *config.Config) *Service {
	enabled := cfg.MailgunDomain != "" && cfg.MailgunAPIKey != ""

	var client mailgun.Mailgun
	if enabled {
		client = mailgun.NewMailgun(cfg.MailgunAPIKey)
	}

	return &Service{
		client:      client,
		domain:      cfg.MailgunDomain,
		senderEmail: cfg.MailgunSenderEmail,
		senderName:  cfg.MailgunSenderName,
		baseURL:     cfg.BaseURL,
		enabled:     enabled,
	}
}

func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendTripInvite mails a join link for the trip. The link carries the
// single-use invite token; the invite code is included as a fallback for
// recipients who already have an account open.
func (s *Service) SendTripInvite(toEmail, inviterName string, trip *models.Trip, inviteToken string) error {
	if !s.enabled {
		return fmt.Errorf("email service is not configured")
	}

	joinURL := fmt.Sprintf("%s/itinerary/join?token=%s", s.baseURL, inviteToken)

	subject := fmt.Sprintf("%s invited you to plan %q on Tripmate", inviterName, trip.Name)
	htmlBody := s.generateInviteHTML(inviterName, trip, joinURL)
	textBody := s.generateInviteText(inviterName, trip, joinURL)

	message := mailgun.NewMessage(
		s.domain,
		fmt.Sprintf("%s <%s>", s.senderName, s.senderEmail),
		subject,
		textBody,
		toEmail,
	)
	message.SetHTML(htmlBody)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := s.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send trip invite to %s: %w", toEmail, err)
	}

	logger.Info("Trip invite sent", "email", toEmail, "trip_id", trip.ID, "message_id", resp)
	return nil
}
