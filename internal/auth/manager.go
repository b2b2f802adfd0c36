// package auth owns the credential lifecycle: PKCE challenge generation, the
// authorization-code exchange, proactive expiry-based refresh, and logout.
//
// The Spotify app is a public client: there is no client secret, and every
// authorization attempt pairs a one-time verifier/challenge.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vuciv/true-random-shuffle/internal/shared"
	"github.com/vuciv/true-random-shuffle/internal/store"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
)

// Credential store keys. Logout removes all of them.
const (
	keyAccessToken  = "spotify.access_token"
	keyRefreshToken = "spotify.refresh_token"
	keyExpiry       = "spotify.expires_at"
	keyVerifier     = "spotify.code_verifier"
)

// ExpiryMargin is subtracted from the provider-reported token lifetime so a
// token is never used within its final seconds.
const ExpiryMargin = 30 * time.Second

// Scopes lists every permission the engine needs: profile and catalog reads
// plus player state and queue mutation.
var Scopes = []string{
	"user-read-private",
	"user-read-email",
	"playlist-read-private",
	"playlist-read-collaborative",
	"user-library-read",
	"user-read-playback-state",
	"user-modify-playback-state",
}

// Manager implements the token lifecycle against an injected credential store.
type Manager struct {
	conf   *oauth2.Config
	store  store.Store
	logger *log.Logger
	now    func() time.Time
}

// NewManager creates a Manager for the configured Spotify application.
func NewManager(cfg shared.SpotifyConfig, st store.Store, logger *log.Logger) (*Manager, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: spotify client_id is not configured", shared.ErrMissingCredentials)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	conf := &oauth2.Config{
		ClientID:    cfg.ClientID,
		RedirectURL: cfg.RedirectURI,
		Scopes:      Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &Manager{
		conf:   conf,
		store:  st,
		logger: logger,
		now:    time.Now,
	}, nil
}

// AuthURL generates a fresh PKCE verifier, persists it for the exchange step,
// and returns the authorization URL to hand off to the browser.
func (m *Manager) AuthURL(state string) (string, error) {
	verifier, err := GenerateVerifier()
	if err != nil {
		return "", err
	}

	if err := m.store.Set(keyVerifier, verifier); err != nil {
		return "", fmt.Errorf("failed to persist code verifier: %w", err)
	}

	return m.conf.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", Challenge(verifier)),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// Exchange trades an authorization code for tokens using the stored verifier.
//
// The verifier is discarded unconditionally, success or failure: it must never
// be reused across exchange attempts.
func (m *Manager) Exchange(ctx context.Context, code string) error {
	verifier, err := m.store.Get(keyVerifier)
	if err != nil || verifier == "" {
		return fmt.Errorf("%w: no code verifier on record", shared.ErrAuthFailed)
	}
	defer func() {
		if err := m.store.Delete(keyVerifier); err != nil {
			m.logger.Warn("failed to discard code verifier", "error", err)
		}
	}()

	token, err := m.conf.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", verifier))
	if err != nil {
		return fmt.Errorf("%w: code exchange: %v", shared.ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: token response missing access token", shared.ErrAuthFailed)
	}

	return m.saveToken(token)
}

// Refresh obtains a new access token from the stored refresh token.
//
// The provider may omit a new refresh token, in which case the prior one is
// retained. A failure here means re-authentication is required, not a
// transient condition.
func (m *Manager) Refresh(ctx context.Context) error {
	refresh, err := m.store.Get(keyRefreshToken)
	if err != nil || refresh == "" {
		return shared.ErrNoRefreshToken
	}

	src := m.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh})
	token, err := src.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if err := m.saveToken(token); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	return nil
}

// Logout clears every persisted credential field.
//
// The backing store is not atomic across keys, so removal is best-effort per
// key and all failures are joined rather than aborting early.
func (m *Manager) Logout() error {
	var errs []error
	for _, key := range []string{keyAccessToken, keyRefreshToken, keyExpiry, keyVerifier} {
		if err := m.store.Delete(key); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}

// AccessToken returns a usable bearer token, refreshing proactively when the
// stored token is past its safety-margined expiry.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	token, err := m.store.Get(keyAccessToken)
	if err != nil || token == "" {
		return "", shared.ErrNotAuthenticated
	}

	if m.expired() {
		m.logger.Debug("access token past expiry, refreshing")
		if err := m.Refresh(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
		}
		if token, err = m.store.Get(keyAccessToken); err != nil {
			return "", shared.ErrNotAuthenticated
		}
	}

	return token, nil
}

// Authenticated reports whether any access token is on record.
func (m *Manager) Authenticated() bool {
	token, err := m.store.Get(keyAccessToken)
	return err == nil && token != ""
}

func (m *Manager) expired() bool {
	raw, err := m.store.Get(keyExpiry)
	if err != nil || raw == "" {
		return false
	}
	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return false
	}
	return m.now().After(expiry)
}

// saveToken persists the access token, the refresh token when one was
// returned, and the margined expiry.
func (m *Manager) saveToken(token *oauth2.Token) error {
	if err := m.store.Set(keyAccessToken, token.AccessToken); err != nil {
		return fmt.Errorf("failed to persist access token: %w", err)
	}

	if token.RefreshToken != "" {
		if err := m.store.Set(keyRefreshToken, token.RefreshToken); err != nil {
			return fmt.Errorf("failed to persist refresh token: %w", err)
		}
	}

	if !token.Expiry.IsZero() {
		expiry := token.Expiry.Add(-ExpiryMargin).UTC().Format(time.RFC3339)
		if err := m.store.Set(keyExpiry, expiry); err != nil {
			return fmt.Errorf("failed to persist token expiry: %w", err)
		}
	}

	return nil
}
