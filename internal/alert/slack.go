// Package alert posts one-line notifications to a Slack incoming webhook.
package alert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

type Slack struct {
	WebhookURL string
	Client     *http.Client
}

func NewSlack(webhookURL string) *Slack {
	return &Slack{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts text to the webhook. A missing webhook makes this a no-op;
// delivery failures are logged and swallowed, alerts are best effort.
func (s *Slack) Notify(text string) {
	if s.WebhookURL == "" {
		return
	}
	if err := s.post(text); err != nil {
		log.Printf("alert: slack notify: %v", err)
	}
}

func (s *Slack) post(text string) error {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("slack: marshal payload: %w", err)
	}

	resp, err := s.Client.Post(s.WebhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack: unexpected status %d", resp.StatusCode)
	}
	return nil
}
