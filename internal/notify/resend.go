package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrNotConfigured = errors.New("email provider not configured")

// Email is a fully rendered message ready for the provider.
type Email struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers rendered emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// ResendClient talks to the Resend REST API.
type ResendClient struct {
	apiKey  string
	baseURL string
	from    string
	client  *http.Client
}

func NewResendClient(apiKey, baseURL, from string, timeout time.Duration) *ResendClient {
	return &ResendClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		from:    from,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *ResendClient) Send(ctx context.Context, email Email) error {
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	if email.From == "" {
		email.From = c.from
	}

	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}
