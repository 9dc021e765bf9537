package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Sender delivers a payload to the relay with a single POST. No retry, no
// queueing; the response body is never inspected, only the status class.
type Sender struct {
	client *http.Client
	url    string
}

func NewSender(relayURL string, timeout time.Duration) *Sender {
	return &Sender{
		client: &http.Client{Timeout: timeout},
		url:    relayURL,
	}
}

// Send posts the visitor record. A nil error means the relay answered 2xx.
func (s *Sender) Send(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to relay: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("relay returned status %d", resp.StatusCode)
	}
	return nil
}
