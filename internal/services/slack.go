package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zdx/internal/models"
	"github.com/desertthunder/zdx/internal/shared"
)

// SlackClient announces uploaded videos through an incoming webhook.
type SlackClient struct {
	webhookURL string
	client     *http.Client
	logger     *log.Logger
}

// SlackOpts configures a SlackClient.
type SlackOpts struct {
	WebhookURL string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewSlackClient creates a SlackClient. An empty webhook URL is allowed;
// Notify then logs a warning and performs no network I/O.
func NewSlackClient(opts SlackOpts) *SlackClient {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &SlackClient{
		webhookURL: opts.WebhookURL,
		client:     opts.HTTPClient,
		logger:     opts.Logger,
	}
}

// DriveLink builds the deep link for a remote file identifier.
func DriveLink(remoteID string) string {
	return "https://drive.google.com/file/d/" + remoteID + "/view"
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackBlock struct {
	Type     string      `json:"type"`
	Text     *slackText  `json:"text,omitempty"`
	Elements []slackText `json:"elements,omitempty"`
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

// Notify posts a structured upload announcement. Delivery failures are
// returned so the caller can log them; the pipeline treats notification
// as fire-and-forget and never propagates these.
func (s *SlackClient) Notify(ctx context.Context, msg models.NotificationMessage) error {
	if s.webhookURL == "" {
		s.logger.Warn("no slack webhook URL configured, skipping notification")
		return nil
	}

	payload := slackPayload{
		Text: fmt.Sprintf("New recording uploaded: %s", msg.RecordingName),
		Blocks: []slackBlock{
			{
				Type: "section",
				Text: &slackText{
					Type: "mrkdwn",
					Text: fmt.Sprintf("*New recording uploaded*\n• Recording: %s\n• File: %s\n• <%s|View in Google Drive>",
						msg.RecordingName, msg.FileName, DriveLink(msg.RemoteID)),
				},
			},
			{
				Type: "context",
				Elements: []slackText{
					{Type: "mrkdwn", Text: "_Delivered by zdx_"},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected: status %d", resp.StatusCode)
	}

	s.logger.Info("slack notification sent", "file", msg.FileName)
	return nil
}
