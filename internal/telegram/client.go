// Package telegram is a minimal Bot API client: one method, one request,
// no retry. The token and chat id are server-side configuration and never
// appear in anything sent back to the browser.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultAPIHost is the production Bot API host; tests point it elsewhere.
const DefaultAPIHost = "https://api.telegram.org"

type Client struct {
	httpClient *http.Client
	apiHost    string
	token      string
	chatID     string
}

func NewClient(apiHost, token, chatID string, timeout time.Duration) *Client {
	if apiHost == "" {
		apiHost = DefaultAPIHost
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiHost:    apiHost,
		token:      token,
		chatID:     chatID,
	}
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// SendMessage forwards text as an HTML-mode chat message. A non-2xx answer
// from the Bot API is an error; the caller decides whether that matters.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	payload := sendMessageRequest{
		ChatID:                c.chatID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode sendMessage payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.apiHost, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send to Telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, detail)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
