// Package auth supplies bearer credentials for the sync server. Token
// acquisition and refresh run against the server's auth endpoints; the sync
// engine only sees an opaque TokenSource.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/fincatch/fincatch/internal/common"
	"github.com/fincatch/fincatch/internal/logging"
)

// TokenSource yields the current access token, refreshing it upstream when
// needed. Implementations must be safe for concurrent use.
type TokenSource interface {
	// AccessToken returns a bearer token expected to be valid for at
	// least a short grace period. Fails with common.ErrUnauthorized when
	// no credentials are available.
	AccessToken(ctx context.Context) (string, error)

	// Refresh forces a token refresh using the stored refresh token.
	Refresh(ctx context.Context) error

	// Authenticated reports whether a token pair is currently held.
	Authenticated() bool
}

// expirySkew is how close to the exp claim a token may get before we
// refresh it proactively.
const expirySkew = 30 * time.Second

// Service is an HTTP TokenSource backed by the sync server's auth API.
// Tokens are held in memory only; persisting them (encrypted or not) is the
// host application's concern.
type Service struct {
	serverURL string
	appID     string
	apiKey    string
	http      *http.Client
	log       logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// NewService returns a Service talking to serverURL with the given tenant
// credentials.
func NewService(serverURL, appID, apiKey string, httpClient *http.Client, log logging.Logger) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Service{
		serverURL: serverURL,
		appID:     appID,
		apiKey:    apiKey,
		http:      httpClient,
		log:       log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type authResponse struct {
	UserID       string `json:"userId"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login exchanges user credentials for a token pair.
func (s *Service) Login(ctx context.Context, email, password string) error {
	resp, err := s.post(ctx, "/api/v1/auth/login", loginRequest{Email: email, Password: password})
	if err != nil {
		return err
	}

	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	s.log.Info(ctx, "logged in", "user_id", resp.UserID)
	return nil
}

// SetTokens installs an externally obtained token pair.
func (s *Service) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

// Authenticated implements TokenSource.
func (s *Service) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != ""
}

// AccessToken implements TokenSource. A token whose exp claim falls inside
// the skew window is refreshed before being handed out.
func (s *Service) AccessToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	token := s.accessToken
	s.mu.Unlock()

	if token == "" {
		return "", fmt.Errorf("no access token: %w", common.ErrUnauthorized)
	}

	exp, err := tokenExpiry(token)
	if err != nil {
		// Opaque (non-JWT) tokens are handed out as-is and left to the
		// server to reject.
		s.log.Debug(ctx, "cannot inspect token expiry", "error", err)
		return token, nil
	}

	if time.Until(exp) > expirySkew {
		return token, nil
	}

	if err := s.Refresh(ctx); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, nil
}

// Refresh implements TokenSource.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	refresh := s.refreshToken
	s.mu.Unlock()

	if refresh == "" {
		return fmt.Errorf("no refresh token: %w", common.ErrTokenExpired)
	}

	resp, err := s.post(ctx, "/api/v1/auth/refresh", refreshRequest{RefreshToken: refresh})
	if err != nil {
		return err
	}

	s.SetTokens(resp.AccessToken, resp.RefreshToken)
	s.log.Debug(ctx, "tokens refreshed")
	return nil
}

func (s *Service) post(ctx context.Context, path string, payload any) (*authResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(common.AppIDHeader, s.appID)
	req.Header.Set(common.APIKeyHeader, s.apiKey)

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w: %w", common.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("auth rejected (%d): %w", resp.StatusCode, common.ErrUnauthorized)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("auth failed (%d): %s: %w", resp.StatusCode, snippet, common.ErrUnavailable)
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return nil, fmt.Errorf("failed to parse auth response: %w: %w", common.ErrProtocol, err)
	}
	return &ar, nil
}
