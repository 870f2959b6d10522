// Package discord posts reconciliation pass summaries to a Discord webhook.
package discord

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"maple-tracker/internal/progression"
)

const (
	// Colors for Discord embeds
	colorGreen = 5763719 // 0x57F287

	// Default timeout for webhook requests
	defaultWebhookTimeout = 10 * time.Second

	// Max retries for rate limiting
	maxRetries = 3
)

// WebhookPayload represents a Discord webhook message
type WebhookPayload struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed represents a Discord embed
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField represents a field in a Discord embed
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter represents the footer of a Discord embed
type EmbedFooter struct {
	Text string `json:"text"`
}

// NewPassSummaryPayload builds the daily-update embed for a pass that
// changed at least one character.
func NewPassSummaryPayload(summary progression.PassSummary) WebhookPayload {
	fields := []EmbedField{
		{Name: "Characters Updated", Value: strconv.Itoa(summary.SnapshotsUpdated), Inline: true},
		{Name: "Characters Checked", Value: strconv.Itoa(summary.CharactersChecked), Inline: true},
		{Name: "Duration", Value: formatDuration(summary.Duration), Inline: true},
	}

	if len(summary.LevelUps) > 0 {
		var buf bytes.Buffer
		for _, lu := range summary.LevelUps {
			fmt.Fprintf(&buf, "%s: %d → %d\n", lu.Name, lu.From, lu.To)
		}
		fields = append(fields, EmbedField{Name: "Level Ups", Value: buf.String()})
	}

	return WebhookPayload{
		Embeds: []Embed{
			{
				Title:  "📊 Daily Progression Update",
				Color:  colorGreen,
				Fields: fields,
				Footer: &EmbedFooter{Text: "MapleStory progression tracker"},
			},
		},
	}
}

// WebhookClient sends notifications to a Discord webhook.
type WebhookClient struct {
	webhookURL string
	httpClient *http.Client
}

// NewWebhookClient creates a new WebhookClient.
func NewWebhookClient(webhookURL string) *WebhookClient {
	return &WebhookClient{
		webhookURL: webhookURL,
		httpClient: &http.Client{
			Timeout: defaultWebhookTimeout,
		},
	}
}

// NotifyPassSummary sends the pass summary embed. Plugs into
// progression.NotifyFunc.
func (c *WebhookClient) NotifyPassSummary(ctx context.Context, summary progression.PassSummary) error {
	return c.sendPayload(ctx, NewPassSummaryPayload(summary))
}

// sendPayload sends a webhook payload with retry on rate limiting
func (c *WebhookClient) sendPayload(ctx context.Context, payload WebhookPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		resp.Body.Close()

		// Success - Discord returns 204 No Content
		if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
			return nil
		}

		// Rate limited - wait and retry
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := resp.Header.Get("Retry-After")
			waitDuration := time.Second
			if retryAfter != "" {
				if seconds, err := strconv.Atoi(retryAfter); err == nil {
					waitDuration = time.Duration(seconds) * time.Second
				}
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(waitDuration):
				continue
			}
		}

		// Other error
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}

	return fmt.Errorf("webhook request failed after %d retries", maxRetries)
}

// formatDuration formats a duration as "Xm Ys" (e.g. 4m 32s)
func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
