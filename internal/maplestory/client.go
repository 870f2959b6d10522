// Package maplestory talks to the public MapleStory ranking API and resolves
// batches of character names to ranking records.
package maplestory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const defaultTimeout = 10 * time.Second

// The ranking endpoint rejects the default Go user agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ErrCharacterNotFound means the ranking API answered with zero results for
// the queried name. Callers treat it as a skip, not a failure.
var ErrCharacterNotFound = errors.New("character not found in rankings")

// Client queries the MapleStory ranking API. One GET per character name.
type Client struct {
	baseURL    string
	worldIndex int
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a ranking API client for the given world.
func NewClient(baseURL string, worldIndex int, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		worldIndex: worldIndex,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "ranking-client").Logger(),
	}
}

// GetCharacterData fetches the ranking record for a single character name.
// Returns ErrCharacterNotFound when the name has no ranking entry.
func (c *Client) GetCharacterData(ctx context.Context, name string) (*CharacterData, error) {
	reqURL := fmt.Sprintf("%s?type=overall&id=weekly&reboot_index=%d&page_index=1&character_name=%s",
		c.baseURL, c.worldIndex, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ranking request for %q failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ranking API returned status %d for %q", resp.StatusCode, name)
	}

	var body rankingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding ranking response for %q: %w", name, err)
	}

	if body.TotalCount == 0 || len(body.Ranks) == 0 {
		return nil, fmt.Errorf("%q: %w", name, ErrCharacterNotFound)
	}

	record := body.Ranks[0]
	c.logger.Debug().
		Str("character", name).
		Int("level", record.Level).
		Uint64("exp", record.Exp).
		Msg("Resolved ranking record")

	return &record, nil
}
