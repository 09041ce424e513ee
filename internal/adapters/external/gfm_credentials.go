package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
)

// HTTPClient is the subset of *http.Client used by the GFM adapters
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ClientID    string `json:"client_id"`
	AccessToken string `json:"access_token"`
}

// GFMCredentialStore exchanges the account credentials for a bearer token and
// keeps the current session in memory. Nothing it holds is ever persisted.
type GFMCredentialStore struct {
	baseURL  string
	username string
	password string
	client   HTTPClient
	logger   ports.Logger

	mutex   sync.Mutex
	session *ports.Session
}

// GFMCredentialStoreParams holds parameters for creating the credential store
type GFMCredentialStoreParams struct {
	BaseURL  string
	Username string
	Password string
	Client   HTTPClient
	Logger   ports.Logger
}

// NewGFMCredentialStore creates a credential store. No request is made until
// the first token is needed.
func NewGFMCredentialStore(params GFMCredentialStoreParams) *GFMCredentialStore {
	client := params.Client
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &GFMCredentialStore{
		baseURL:  strings.TrimRight(params.BaseURL, "/"),
		username: params.Username,
		password: params.Password,
		client:   client,
		logger:   params.Logger,
	}
}

// Token returns the current session, logging in on first use
func (s *GFMCredentialStore) Token(ctx context.Context) (ports.Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.session != nil {
		return *s.session, nil
	}
	return s.login(ctx)
}

// ForceRefresh logs in again unconditionally
func (s *GFMCredentialStore) ForceRefresh(ctx context.Context) (ports.Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.login(ctx)
}

// HasCredentials reports whether both secrets are configured
func (s *GFMCredentialStore) HasCredentials() bool {
	return s.username != "" && s.password != ""
}

// login must be called with the mutex held
func (s *GFMCredentialStore) login(ctx context.Context) (ports.Session, error) {
	s.session = nil
	if !s.HasCredentials() {
		return ports.Session{}, errors.NewAuthError("GFM credentials are not configured", nil)
	}

	payload, err := json.Marshal(loginRequest{Email: s.username, Password: s.password})
	if err != nil {
		return ports.Session{}, errors.NewAuthError("failed to encode login request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/auth/login", bytes.NewReader(payload))
	if err != nil {
		return ports.Session{}, errors.NewConfigurationError("failed to build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ports.Session{}, ctx.Err()
		}
		return ports.Session{}, errors.NewTransientNetworkError("GFM login request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			s.logger.Warn("Failed to close GFM login response body", ports.F("error", closeErr))
		}
	}()

	switch {
	case isTransientStatus(resp.StatusCode):
		return ports.Session{}, errors.NewTransientNetworkError(
			fmt.Sprintf("GFM login returned status %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return ports.Session{}, errors.NewAuthError(
			fmt.Sprintf("GFM rejected the credentials with status %d", resp.StatusCode), nil)
	}

	var body loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&body); err != nil {
		return ports.Session{}, errors.NewAuthError("failed to decode GFM login response", err)
	}
	if body.AccessToken == "" || body.ClientID == "" {
		return ports.Session{}, errors.NewAuthError("GFM login response has no token", nil)
	}

	session := ports.Session{
		UserID:   body.ClientID,
		Token:    body.AccessToken,
		IssuedAt: time.Now(),
	}
	s.session = &session
	s.logger.Info("Authenticated with GFM", ports.F("user_id", session.UserID))
	return session, nil
}

func isTransientStatus(status int) bool {
	return status == http.StatusBadGateway ||
		status == http.StatusServiceUnavailable ||
		status == http.StatusGatewayTimeout
}
