// Zoom API client for user resolution and recording discovery
//
// Response types based on https://developers.zoom.us/docs/api/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zdx/internal/models"
	"github.com/desertthunder/zdx/internal/shared"
	"golang.org/x/time/rate"
)

// statusError carries the HTTP status of a failed API call so callers can
// branch on specific statuses without string matching.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d", e.code)
}

// ZoomService resolves users and lists their cloud recordings. All calls
// are authenticated through the TokenManager and throttled by a shared
// rate limiter sized for the Zoom API's per-second limits.
type ZoomService struct {
	baseURL string
	tokens  *TokenManager
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

// ZoomServiceOpts configures a ZoomService.
type ZoomServiceOpts struct {
	Config     *shared.Config
	Tokens     *TokenManager
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewZoomService creates a ZoomService backed by the given token manager.
func NewZoomService(opts ZoomServiceOpts) *ZoomService {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &ZoomService{
		baseURL: strings.TrimSuffix(opts.Config.Zoom.BaseURL, "/"),
		tokens:  opts.Tokens,
		client:  opts.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(10), 10),
		logger:  opts.Logger,
	}
}

// doRequest performs an authenticated GET against the Zoom API and
// decodes the JSON response into result.
func (s *ZoomService) doRequest(ctx context.Context, endpoint string, query url.Values, result any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	cred, err := s.tokens.Token(ctx)
	if err != nil {
		return err
	}

	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: zoom API: %w", shared.ErrAPIRequest, &statusError{code: resp.StatusCode})
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ResolveUser looks up a Zoom user by email. A provider 404 maps to
// [shared.ErrUserNotFound]; other provider errors propagate unchanged.
func (s *ZoomService) ResolveUser(ctx context.Context, email string) (*models.User, error) {
	s.logger.Info("looking up user", "email", email)

	var user models.User
	err := s.doRequest(ctx, "/users/"+url.PathEscape(email), nil, &user)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", shared.ErrUserNotFound, email)
		}
		return nil, err
	}

	s.logger.Info("found user", "name", user.DisplayName(), "id", user.ID)
	return &user, nil
}

// ListRecordings fetches the user's cloud recordings within the given
// day-granularity date bounds.
func (s *ZoomService) ListRecordings(ctx context.Context, userID string, from, to time.Time) ([]models.Recording, error) {
	query := url.Values{}
	if !from.IsZero() {
		query.Set("from", from.Format("2006-01-02"))
	}
	if !to.IsZero() {
		query.Set("to", to.Format("2006-01-02"))
	}

	var response struct {
		Meetings []models.Recording `json:"meetings"`
	}
	if err := s.doRequest(ctx, "/users/"+url.PathEscape(userID)+"/recordings", query, &response); err != nil {
		return nil, err
	}

	s.logger.Info("found recordings", "count", len(response.Meetings))
	return response.Meetings, nil
}

// FilterByTopic returns the recordings whose topic contains the query,
// case-insensitively.
func FilterByTopic(recordings []models.Recording, query string) []models.Recording {
	needle := strings.ToLower(query)
	var matched []models.Recording
	for _, rec := range recordings {
		if strings.Contains(strings.ToLower(rec.Topic), needle) {
			matched = append(matched, rec)
		}
	}
	return matched
}
