package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lightsoft-dev/light-archive/internal/domain"
	authuc "github.com/lightsoft-dev/light-archive/internal/usecase/auth"
)

// --- Mocks ---

type mockAuth struct {
	enabled   bool
	token     string
	storeErr  error
	loggedOut []string
}

func (m *mockAuth) Enabled() bool { return m.enabled }

func (m *mockAuth) Login(_ context.Context, email, password string) (authuc.Session, error) {
	if email == "admin@example.com" && password == "pw" {
		return authuc.Session{Token: "sess", ExpiresAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
	}
	return authuc.Session{}, domain.ErrUnauthorized
}

func (m *mockAuth) Validate(_ context.Context, token string) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	if token != m.token {
		return domain.ErrUnauthorized
	}
	return nil
}

func (m *mockAuth) Logout(_ context.Context, token string) error {
	m.loggedOut = append(m.loggedOut, token)
	return nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// --- Tests ---

func TestAuthMiddleware_Disabled_PassThrough(t *testing.T) {
	handler := BearerAuthMiddleware(&mockAuth{})(okHandler())

	req := httptest.NewRequest("POST", "/archives", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("disabled: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_MissingHeader_401(t *testing.T) {
	handler := BearerAuthMiddleware(&mockAuth{enabled: true, token: "secret"})(okHandler())

	req := httptest.NewRequest("POST", "/archives", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing header: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != ErrorCodeUnauthorized {
		t.Errorf("error code: got %s, want %s", errResp.Code, ErrorCodeUnauthorized)
	}
}

func TestAuthMiddleware_BasicScheme_401(t *testing.T) {
	handler := BearerAuthMiddleware(&mockAuth{enabled: true, token: "secret"})(okHandler())

	req := httptest.NewRequest("POST", "/archives", http.NoBody)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("basic scheme: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_InvalidToken_401(t *testing.T) {
	handler := BearerAuthMiddleware(&mockAuth{enabled: true, token: "secret"})(okHandler())

	req := httptest.NewRequest("POST", "/archives", http.NoBody)
	req.Header.Set("Authorization", "Bearer wrong")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ValidToken_200(t *testing.T) {
	handler := BearerAuthMiddleware(&mockAuth{enabled: true, token: "secret"})(okHandler())

	req := httptest.NewRequest("POST", "/archives", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("valid token: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_StoreFailure_500(t *testing.T) {
	handler := BearerAuthMiddleware(&mockAuth{enabled: true, storeErr: errors.New("redis down")})(okHandler())

	req := httptest.NewRequest("POST", "/archives", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("store failure: got %d, want %d", rr.Code, http.StatusInternalServerError)
	}
}
