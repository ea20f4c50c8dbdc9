package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/worklink/internal/model"
)

func newTestRateLimiter(generalBurst, signupBurst int) *RateLimiter {
	return NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001), // テスト中に補充されない低レート
		GeneralBurst:    generalBurst,
		SignupRate:      rate.Limit(0.001),
		SignupBurst:     signupBurst,
		CleanupInterval: time.Hour,
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSignupMiddleware_LimitsAfterBurst(t *testing.T) {
	rl := newTestRateLimiter(10, 3)
	defer rl.Stop()

	handler := rl.SignupMiddleware()(okHandler())

	for i := 0; i < 3; i++ {
		r := httptest.NewRequest("POST", "/api/worker/signup", nil)
		r.RemoteAddr = "203.0.113.1:4000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	r := httptest.NewRequest("POST", "/api/worker/signup", nil)
	r.RemoteAddr = "203.0.113.1:4000"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header not set")
	}
}

func TestSignupMiddleware_KeyedByClientIP(t *testing.T) {
	rl := newTestRateLimiter(10, 1)
	defer rl.Stop()

	handler := rl.SignupMiddleware()(okHandler())

	// 1つ目のIPでバーストを使い切る
	r := httptest.NewRequest("POST", "/api/worker/signup", nil)
	r.RemoteAddr = "203.0.113.1:4000"
	handler.ServeHTTP(httptest.NewRecorder(), r)

	r = httptest.NewRequest("POST", "/api/worker/signup", nil)
	r.RemoteAddr = "203.0.113.1:5000" // 同一IP、別ポート
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("same IP: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	// 別IPは影響を受けない
	r = httptest.NewRequest("POST", "/api/worker/signup", nil)
	r.RemoteAddr = "203.0.113.2:4000"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("different IP: status = %d, want %d", w.Code, http.StatusOK)
	}

	if got := rl.SignupLimiterCount(); got != 2 {
		t.Errorf("SignupLimiterCount = %d, want 2", got)
	}
}

func TestGeneralMiddleware_KeyedByIdentity(t *testing.T) {
	rl := newTestRateLimiter(1, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	request := func(identityID string) *httptest.ResponseRecorder {
		r := httptest.NewRequest("GET", "/api/worker/profile", nil)
		ctx := ContextWithAuth(r.Context(), AuthContext{ID: identityID, Role: model.RoleWorker})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r.WithContext(ctx))
		return w
	}

	if w := request("w-1"); w.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want %d", w.Code, http.StatusOK)
	}
	if w := request("w-1"); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request same identity: status = %d, want %d", w.Code, http.StatusTooManyRequests)
	}
	if w := request("w-2"); w.Code != http.StatusOK {
		t.Errorf("different identity: status = %d, want %d", w.Code, http.StatusOK)
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("GeneralLimiterCount = %d, want 2", got)
	}
}

func TestGeneralMiddleware_RequiresAuthContext(t *testing.T) {
	rl := newTestRateLimiter(10, 10)
	defer rl.Stop()

	handler := rl.GeneralMiddleware()(okHandler())

	r := httptest.NewRequest("GET", "/api/worker/profile", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestLimiterPool_Cleanup(t *testing.T) {
	pool := newLimiterPool(rate.Limit(1), 1)
	pool.getOrCreate("a")
	pool.getOrCreate("b")

	if got := pool.count(); got != 2 {
		t.Fatalf("count = %d, want 2", got)
	}

	// TTL 0で全エントリが期限切れになる
	time.Sleep(time.Millisecond)
	pool.cleanup(0)

	if got := pool.count(); got != 0 {
		t.Errorf("count after cleanup = %d, want 0", got)
	}
}
