package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/zdx/internal/models"
	zdxtest "github.com/desertthunder/zdx/internal/testing"
)

func TestDriveLink(t *testing.T) {
	got := DriveLink("1aBcD")
	want := "https://drive.google.com/file/d/1aBcD/view"
	if got != want {
		t.Errorf("DriveLink() = %q, want %q", got, want)
	}
}

func TestNotify(t *testing.T) {
	msg := models.NotificationMessage{
		RecordingName: "Weekly Sync",
		FileName:      "20 June 2024 - Weekly Sync.mp4",
		RemoteID:      "1aBcD",
	}

	t.Run("delivers structured payload", func(t *testing.T) {
		var captured []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("unexpected content type %q", ct)
			}
			captured, _ = io.ReadAll(r.Body)
		}))
		defer srv.Close()

		client := NewSlackClient(SlackOpts{WebhookURL: srv.URL})
		if err := client.Notify(context.Background(), msg); err != nil {
			t.Fatalf("Notify() failed: %v", err)
		}

		var payload struct {
			Text   string `json:"text"`
			Blocks []struct {
				Type string `json:"type"`
				Text *struct {
					Text string `json:"text"`
				} `json:"text"`
			} `json:"blocks"`
		}
		if err := json.Unmarshal(captured, &payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if !strings.Contains(payload.Text, "Weekly Sync") {
			t.Errorf("fallback text %q missing recording name", payload.Text)
		}
		if len(payload.Blocks) != 2 {
			t.Fatalf("expected 2 blocks, got %d", len(payload.Blocks))
		}
		if payload.Blocks[0].Type != "section" || payload.Blocks[0].Text == nil {
			t.Fatal("expected leading section block with text")
		}
		body := payload.Blocks[0].Text.Text
		if !strings.Contains(body, "https://drive.google.com/file/d/1aBcD/view") {
			t.Errorf("section text %q missing drive deep link", body)
		}
		if !strings.Contains(body, msg.FileName) {
			t.Errorf("section text %q missing file name", body)
		}
	})

	t.Run("no webhook configured performs no I/O", func(t *testing.T) {
		client := NewSlackClient(SlackOpts{
			HTTPClient: &http.Client{Transport: &zdxtest.FailingRoundTripper{T: t}},
		})
		if err := client.Notify(context.Background(), msg); err != nil {
			t.Errorf("Notify() without webhook must be a no-op, got %v", err)
		}
	})

	t.Run("rejection surfaces as error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid_payload", http.StatusBadRequest)
		}))
		defer srv.Close()

		client := NewSlackClient(SlackOpts{WebhookURL: srv.URL})
		if err := client.Notify(context.Background(), msg); err == nil {
			t.Error("expected error for rejected notification")
		}
	})
}
