// Package notify delivers moderation alerts to a chat webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Notifier is implemented by outbound alert channels.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// SlackWebhook posts messages to a Slack incoming-webhook URL.
type SlackWebhook struct {
	url        string
	httpClient *http.Client
}

func NewSlackWebhook(url string) *SlackWebhook {
	return &SlackWebhook{
		url:        url,
		httpClient: &http.Client{Timeout: 8 * time.Second},
	}
}

func (s *SlackWebhook) Send(ctx context.Context, text string) error {
	if s.url == "" {
		return errors.New("notify: webhook URL is not configured")
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("notify: webhook returned status %d", res.StatusCode)
	}
	return nil
}
