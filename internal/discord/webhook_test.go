package discord

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"maple-tracker/internal/progression"
)

func summaryFixture() progression.PassSummary {
	return progression.PassSummary{
		CharactersChecked: 12,
		RecordsFetched:    10,
		SnapshotsUpdated:  3,
		Duration:          272 * time.Second,
		LevelUps: []progression.LevelUp{
			{Name: "Mercedes", From: 200, To: 201},
		},
	}
}

func TestNotifyPassSummary_SendsEmbed(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewWebhookClient(srv.URL)
	if err := client.NotifyPassSummary(context.Background(), summaryFixture()); err != nil {
		t.Fatalf("NotifyPassSummary failed: %v", err)
	}

	for _, want := range []string{"Daily Progression Update", "Characters Updated", `"3"`, "Mercedes", "4m 32s"} {
		if !strings.Contains(body, want) {
			t.Errorf("payload missing %q: %s", want, body)
		}
	}
}

func TestSendPayload_RetriesOnRateLimit(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewWebhookClient(srv.URL)
	if err := client.NotifyPassSummary(context.Background(), summaryFixture()); err != nil {
		t.Fatalf("expected success after retry, got: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("made %d requests, want 2", calls.Load())
	}
}

func TestSendPayload_GivesUpAfterMaxRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewWebhookClient(srv.URL)
	if err := client.NotifyPassSummary(context.Background(), summaryFixture()); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestSendPayload_FailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewWebhookClient(srv.URL)
	if err := client.NotifyPassSummary(context.Background(), summaryFixture()); err == nil {
		t.Fatal("expected error on 400 response")
	}
}
