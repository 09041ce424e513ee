package external

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"floodmap.app/internal/mocks"
	"floodmap.app/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLoginServer(t *testing.T, handler http.HandlerFunc) *GFMCredentialStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGFMCredentialStore(GFMCredentialStoreParams{
		BaseURL:  server.URL,
		Username: "user@example.com",
		Password: "secret",
		Client:   server.Client(),
		Logger:   mocks.Logger{},
	})
}

func TestGFMCredentialStore_Token(t *testing.T) {
	logins := 0
	store := newLoginServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		logins++
		fmt.Fprintf(w, `{"client_id":"user-1","access_token":"token-%d"}`, logins)
	})
	ctx := context.Background()

	session, err := store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-1", session.UserID)
	assert.Equal(t, "token-1", session.Token)
	assert.False(t, session.IssuedAt.IsZero())

	session, err = store.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", session.Token)

	session, err = store.ForceRefresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", session.Token)
	assert.Equal(t, 2, logins)
}

func TestGFMCredentialStore_LoginFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		isError func(error) bool
	}{
		{"Rejected", http.StatusUnauthorized, `{"detail":"bad credentials"}`, errors.IsAuthError},
		{"Forbidden", http.StatusForbidden, ``, errors.IsAuthError},
		{"Unavailable", http.StatusServiceUnavailable, ``, errors.IsTransientNetworkError},
		{"NoToken", http.StatusOK, `{"client_id":"user-1","access_token":""}`, errors.IsAuthError},
		{"Garbage", http.StatusOK, `<html>`, errors.IsAuthError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newLoginServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})

			_, err := store.Token(context.Background())

			assert.True(t, tt.isError(err), "unexpected error: %v", err)
		})
	}
}

func TestGFMCredentialStore_FailedRefreshDropsSession(t *testing.T) {
	fail := false
	store := newLoginServer(t, func(w http.ResponseWriter, r *http.Request) {
		if fail {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"client_id":"user-1","access_token":"token-1"}`)
	})
	ctx := context.Background()

	_, err := store.Token(ctx)
	require.NoError(t, err)

	fail = true
	_, err = store.ForceRefresh(ctx)
	assert.True(t, errors.IsAuthError(err))

	_, err = store.Token(ctx)
	assert.True(t, errors.IsAuthError(err))
}

func TestGFMCredentialStore_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()
	store := NewGFMCredentialStore(GFMCredentialStoreParams{
		BaseURL:  server.URL,
		Username: "user@example.com",
		Password: "secret",
		Logger:   mocks.Logger{},
	})

	_, err := store.Token(context.Background())

	assert.True(t, errors.IsTransientNetworkError(err))
}
