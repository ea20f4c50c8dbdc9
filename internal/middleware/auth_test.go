package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/worklink/internal/auth"
	"github.com/hitoshi/worklink/internal/model"
)

// --- モック定義 ---

type mockVerifier struct {
	verifyFn func(raw string) (*auth.Claim, error)
}

func (m *mockVerifier) Verify(raw string) (*auth.Claim, error) {
	if m.verifyFn != nil {
		return m.verifyFn(raw)
	}
	return nil, errors.New("verify not configured")
}

func parseAuthErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return body
}

// --- RequireAuth ---

func TestRequireAuth_NoToken(t *testing.T) {
	mw := RequireAuth(&mockVerifier{}, model.RoleWorker)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	r := httptest.NewRequest("GET", "/api/worker/profile", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := parseAuthErrorResponse(t, w)
	if body["success"] != false {
		t.Errorf("success = %v, want false", body["success"])
	}
	if body["message"] != "No token provided" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(raw string) (*auth.Claim, error) {
			return nil, auth.ErrInvalidToken
		},
	}
	mw := RequireAuth(verifier, model.RoleWorker)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	r := httptest.NewRequest("GET", "/api/worker/profile", nil)
	r.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := parseAuthErrorResponse(t, w)
	if body["message"] != "invalid or expired token" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestRequireAuth_RoleMismatch(t *testing.T) {
	// ワーカートークンでスタートアップ専用ルートにアクセス
	verifier := &mockVerifier{
		verifyFn: func(raw string) (*auth.Claim, error) {
			return &auth.Claim{ID: "w-1", Role: model.RoleWorker, Email: "w@example.com"}, nil
		},
	}
	mw := RequireAuth(verifier, model.RoleStartup)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not be reached")
	}))

	r := httptest.NewRequest("POST", "/api/startup/create-gig", nil)
	r.Header.Set("Authorization", "Bearer worker-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
	body := parseAuthErrorResponse(t, w)
	if body["message"] != "This operation requires a startup account" {
		t.Errorf("message = %q", body["message"])
	}
}

func TestRequireAuth_Success(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(raw string) (*auth.Claim, error) {
			if raw != "good-token" {
				t.Errorf("Verify received %q, want good-token", raw)
			}
			return &auth.Claim{ID: "w-1", Role: model.RoleWorker, Email: "w@example.com"}, nil
		},
	}
	mw := RequireAuth(verifier, model.RoleWorker)

	var got AuthContext
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ac, err := AuthFromContext(r.Context())
		if err != nil {
			t.Fatalf("AuthFromContext: %v", err)
		}
		got = ac
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest("GET", "/api/worker/profile", nil)
	r.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got.ID != "w-1" || got.Role != model.RoleWorker || got.Email != "w@example.com" {
		t.Errorf("AuthContext = %+v", got)
	}
}

func TestAuthFromContext_Missing(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)

	_, err := AuthFromContext(r.Context())

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAuthenticationFailed {
		t.Errorf("err = %v, want AUTHENTICATION_FAILED", err)
	}
}
