package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/zdx/internal/models"
	"github.com/desertthunder/zdx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// tokenSafetyMargin is subtracted from the advertised expiry so a
// credential is refreshed before the provider actually rejects it.
const tokenSafetyMargin = 300 * time.Second

// TokenManager performs the client-credentials exchange against the Zoom
// token endpoint and caches the resulting credential until it nears
// expiry. Refreshes are serialized so concurrent callers cannot trigger
// duplicate exchanges.
type TokenManager struct {
	mu     sync.Mutex
	conf   *clientcredentials.Config
	client *http.Client
	logger *log.Logger
	cached *models.Credential
	now    func() time.Time
}

// TokenManagerOpts configures a TokenManager.
type TokenManagerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Now        func() time.Time // clock override for tests
}

// NewTokenManager creates a TokenManager for the configured Zoom account.
func NewTokenManager(opts TokenManagerOpts) *TokenManager {
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	conf := &clientcredentials.Config{
		ClientID:     opts.Config.Zoom.ClientID,
		ClientSecret: opts.Config.Zoom.ClientSecret,
		TokenURL:     opts.Config.Zoom.TokenURL,
		EndpointParams: url.Values{
			"account_id": {opts.Config.Zoom.AccountID},
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}

	return &TokenManager{
		conf:   conf,
		client: opts.HTTPClient,
		logger: opts.Logger,
		now:    opts.Now,
	}
}

// Token returns the cached credential while it is valid, otherwise
// exchanges client credentials for a fresh one. Exchange failures are
// authentication errors and are never retried here: the same credentials
// would fail identically.
func (m *TokenManager) Token(ctx context.Context) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cached.Valid(m.now()) {
		return m.cached, nil
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.client)
	tok, err := m.conf.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	m.cached = &models.Credential{
		AccessToken: tok.AccessToken,
		ExpiresAt:   tok.Expiry.Add(-tokenSafetyMargin),
	}
	m.logger.Debug("obtained access token", "expires_at", m.cached.ExpiresAt)

	return m.cached, nil
}
