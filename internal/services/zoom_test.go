package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/desertthunder/zdx/internal/models"
	"github.com/desertthunder/zdx/internal/shared"
)

// newTestZoom wires a ZoomService against an API handler, with the token
// endpoint served alongside it.
func newTestZoom(t *testing.T, handler http.HandlerFunc) (*ZoomService, *httptest.Server) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok_abc","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/", handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	config := testConfig(server.URL + "/oauth/token")
	config.Zoom.BaseURL = server.URL

	tokens := NewTokenManager(TokenManagerOpts{Config: config, HTTPClient: server.Client()})
	zoom := NewZoomService(ZoomServiceOpts{Config: config, Tokens: tokens, HTTPClient: server.Client()})
	return zoom, server
}

func TestResolveUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		zoom, _ := newTestZoom(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/users/a@b.com" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer tok_abc" {
				t.Errorf("unexpected authorization header %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"u1","email":"a@b.com","first_name":"Ada","last_name":"Lovelace"}`)
		})

		user, err := zoom.ResolveUser(context.Background(), "a@b.com")
		if err != nil {
			t.Fatalf("ResolveUser() failed: %v", err)
		}
		if user.ID != "u1" || user.DisplayName() != "Ada Lovelace" {
			t.Errorf("unexpected user %+v", user)
		}
	})

	t.Run("not found", func(t *testing.T) {
		zoom, _ := newTestZoom(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"User does not exist"}`, http.StatusNotFound)
		})

		_, err := zoom.ResolveUser(context.Background(), "ghost@b.com")
		if !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("provider error propagates", func(t *testing.T) {
		zoom, _ := newTestZoom(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"teapot"}`, http.StatusTeapot)
		})

		_, err := zoom.ResolveUser(context.Background(), "a@b.com")
		if errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("non-404 must not map to user-not-found: %v", err)
		}
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func TestListRecordings(t *testing.T) {
	zoom, _ := newTestZoom(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/u1/recordings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("from"); got != "2024-06-13" {
			t.Errorf("expected from=2024-06-13, got %s", got)
		}
		if got := r.URL.Query().Get("to"); got != "2024-06-20" {
			t.Errorf("expected to=2024-06-20, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"meetings":[
			{"id":1,"uuid":"uu1","topic":"Weekly Sync Meeting","start_time":"2024-06-19T09:00:00Z","duration":45,
			 "recording_files":[{"id":"f1","recording_type":"shared_screen_with_speaker_view","download_url":"https://example.com/f1","file_size":100}]},
			{"id":2,"uuid":"uu2","topic":"Other","start_time":"2024-06-18T09:00:00Z","duration":10,"recording_files":[]}
		]}`)
	})

	from := time.Date(2024, 6, 13, 15, 4, 5, 0, time.UTC)
	to := time.Date(2024, 6, 20, 15, 4, 5, 0, time.UTC)

	recordings, err := zoom.ListRecordings(context.Background(), "u1", from, to)
	if err != nil {
		t.Fatalf("ListRecordings() failed: %v", err)
	}
	if len(recordings) != 2 {
		t.Fatalf("expected 2 recordings, got %d", len(recordings))
	}
	if recordings[0].Topic != "Weekly Sync Meeting" || recordings[0].Duration != 45 {
		t.Errorf("unexpected first recording %+v", recordings[0])
	}
	if len(recordings[0].Files) != 1 || recordings[0].Files[0].Type != "shared_screen_with_speaker_view" {
		t.Errorf("unexpected recording files %+v", recordings[0].Files)
	}
}

func TestFilterByTopic(t *testing.T) {
	recordings := []models.Recording{
		{Topic: "Weekly Sync Meeting"},
		{Topic: "weekly sync meeting (continued)"},
		{Topic: "Board Review"},
	}

	tc := []struct {
		name  string
		query string
		want  int
	}{
		{name: "case-insensitive substring", query: "sync", want: 2},
		{name: "exact fragment", query: "Board", want: 1},
		{name: "no match", query: "retro", want: 0},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilterByTopic(recordings, tt.query); len(got) != tt.want {
				t.Errorf("FilterByTopic(%q) returned %d recordings, want %d", tt.query, len(got), tt.want)
			}
		})
	}
}
