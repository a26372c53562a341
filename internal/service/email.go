package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"gearloop-backend/internal/logger"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
	enabled   bool
}

func NewEmailService(apiKey, fromEmail, fromName string, enabled bool) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   enabled,
	}
}

func (s *emailService) send(ctx context.Context, to, toName, subject, plainText string) error {
	if !s.enabled {
		logger.Debug("Email disabled, skipping", "to", to, "subject", subject)
		return nil
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	logger.ExternalServiceCall("sendgrid", "Send", "to", to, "subject", subject)
	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	logger.ExternalServiceResult("sendgrid", "Send", err)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendRentalRequestNotification(ctx context.Context, ownerEmail, renterName, itemName string) error {
	subject := fmt.Sprintf("New rental request: %s", itemName)
	body := fmt.Sprintf("%s has requested to rent your %s.\n\nOpen the app to approve or decline.", renterName, itemName)
	return s.send(ctx, ownerEmail, "", subject, body)
}

func (s *emailService) SendRentalApprovalNotification(ctx context.Context, renterEmail, itemName, ownerName string) error {
	subject := fmt.Sprintf("Rental approved: %s", itemName)
	body := fmt.Sprintf("%s approved your request for %s.\n\nComplete the payment to reserve your dates.", ownerName, itemName)
	return s.send(ctx, renterEmail, "", subject, body)
}

func (s *emailService) SendPaymentConfirmation(ctx context.Context, email, name, itemName string, amountCents int64) error {
	subject := fmt.Sprintf("Payment received: %s", itemName)
	body := fmt.Sprintf("Hello %s,\n\nWe received the payment of %.2f for %s. The rental is now awaiting handover.", name, float64(amountCents)/100, itemName)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendRentalCompletionNotification(ctx context.Context, email, role, itemName string, amountCents int64) error {
	subject := fmt.Sprintf("Rental completed: %s", itemName)
	body := fmt.Sprintf("The rental of %s is complete. Settled amount: %.2f (%s).", itemName, float64(amountCents)/100, role)
	return s.send(ctx, email, "", subject, body)
}

func (s *emailService) SendDisputeResolutionNotification(ctx context.Context, email, name, itemName, decision string) error {
	subject := fmt.Sprintf("Dispute resolved: %s", itemName)
	body := fmt.Sprintf("Hello %s,\n\nThe dispute on the rental of %s has been resolved (%s). Check your wallet for the settlement.", name, itemName, decision)
	return s.send(ctx, email, name, subject, body)
}
