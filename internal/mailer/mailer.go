// Package mailer sends reminder emails through an HTTP email API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rental-service/pkg/config"
)

// Mailer delivers a single email. Delivery is fire-and-forget from the
// caller's point of view: a failed send is logged and recorded, not retried.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// APIMailer posts messages to a JSON email API (Resend-compatible).
type APIMailer struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
}

// New builds a mailer from configuration. When no API key is configured it
// returns a Nop mailer so development setups work without a provider.
func New(cfg *config.MailConfig) Mailer {
	if cfg.APIKey == "" {
		return Nop{}
	}
	return &APIMailer{
		endpoint: cfg.APIEndpoint,
		apiKey:   cfg.APIKey,
		from:     cfg.FromAddress,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send posts the message to the email API
func (m *APIMailer) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(sendRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email API returned status %d", resp.StatusCode)
	}
	return nil
}

// Nop is a mailer that silently accepts every message
type Nop struct{}

func (Nop) Send(ctx context.Context, to, subject, body string) error {
	return nil
}

// OverdueReminderBody renders the reminder email for an overdue invoice
func OverdueReminderBody(customerName string, invoiceID uint, amountDue float64, dueDate time.Time) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #e11d48;">Overdue Invoice Notice</h2>
  <p>Dear %s,</p>
  <p>This is a reminder that the payment for invoice <strong>#%d</strong> is now overdue.</p>
  <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
    <p style="margin: 0;"><strong>Invoice Details:</strong></p>
    <p style="margin: 8px 0;">Amount Due: $%.2f</p>
    <p style="margin: 8px 0;">Due Date: %s</p>
  </div>
  <p>Please process this payment as soon as possible to avoid any additional fees or service interruptions.</p>
  <p>If you have already made this payment, please disregard this notice and accept our thanks.</p>
  <p style="margin-top: 30px;">Best regards,<br>Your Property Management Team</p>
</div>`, customerName, invoiceID, amountDue, dueDate.Format("2006-01-02"))
}
