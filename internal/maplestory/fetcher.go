package maplestory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	// DefaultBatchSize is how many names are queried concurrently.
	DefaultBatchSize = 5
	// DefaultQueryDelay is the pause after each individual query.
	DefaultQueryDelay = 1 * time.Second
	// DefaultBatchDelay is the pause between batches.
	DefaultBatchDelay = 2 * time.Second
)

// FetcherConfig tunes batching and pacing. Zero values take defaults;
// tests shrink the delays.
type FetcherConfig struct {
	BatchSize  int
	QueryDelay time.Duration
	BatchDelay time.Duration
}

// CharacterSource is the single-name lookup the fetcher fans out over.
// Satisfied by *Client; tests substitute a fake.
type CharacterSource interface {
	GetCharacterData(ctx context.Context, name string) (*CharacterData, error)
}

// Fetcher resolves lists of character names against the ranking API in
// rate-limited batches. A name that fails or has no ranking entry is logged
// and dropped; it never aborts the batch.
type Fetcher struct {
	source CharacterSource
	config FetcherConfig
	logger zerolog.Logger
}

// NewFetcher creates a batch fetcher over the given source.
func NewFetcher(source CharacterSource, cfg FetcherConfig, logger zerolog.Logger) *Fetcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.QueryDelay <= 0 {
		cfg.QueryDelay = DefaultQueryDelay
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultBatchDelay
	}
	return &Fetcher{
		source: source,
		config: cfg,
		logger: logger.With().Str("component", "batch-fetcher").Logger(),
	}
}

// FetchAll resolves the given names to ranking records. Names within a batch
// are queried concurrently; each query is followed by the per-query delay and
// batches are separated by the batch delay to stay under the API's implicit
// rate limit. Result order is completion order, not input order.
func (f *Fetcher) FetchAll(ctx context.Context, names []string) []CharacterData {
	var (
		mu      sync.Mutex
		results []CharacterData
	)

	for start := 0; start < len(names); start += f.config.BatchSize {
		end := start + f.config.BatchSize
		if end > len(names) {
			end = len(names)
		}
		batch := names[start:end]

		var wg sync.WaitGroup
		for _, name := range batch {
			wg.Add(1)
			go func(name string) {
				defer wg.Done()

				data, err := f.source.GetCharacterData(ctx, name)
				switch {
				case err == nil:
					mu.Lock()
					results = append(results, *data)
					mu.Unlock()
				case errors.Is(err, ErrCharacterNotFound):
					f.logger.Info().Str("character", name).Msg("Character not found in rankings, skipping")
				default:
					f.logger.Warn().Err(err).Str("character", name).Msg("Ranking fetch failed, skipping")
				}

				sleepCtx(ctx, f.config.QueryDelay)
			}(name)
		}
		wg.Wait()

		if ctx.Err() != nil {
			break
		}
		if end < len(names) {
			sleepCtx(ctx, f.config.BatchDelay)
		}
	}

	return results
}

// sleepCtx waits for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
