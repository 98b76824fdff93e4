package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/shopmate/internal/ratelimit"
	"github.com/example/shopmate/internal/session"
)

// ============================================
// Session
// ============================================

func TestSession_MintsIdentityOnFirstContact(t *testing.T) {
	tokens := session.NewTokenService("test-secret", time.Hour)
	var seen string
	h := Session(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	}))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, seen)
	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	// The cookie verifies back to the same identity.
	id, err := tokens.Verify(cookies[0].Value)
	require.NoError(t, err)
	assert.Equal(t, seen, id)
}

func TestSession_KeepsExistingIdentity(t *testing.T) {
	tokens := session.NewTokenService("test-secret", time.Hour)
	sessionID := session.NewSessionID()
	signed, _, err := tokens.Issue(sessionID)
	require.NoError(t, err)

	var seen string
	h := Session(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: signed})
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	assert.Equal(t, sessionID, seen)
	assert.Empty(t, res.Result().Cookies())
}

func TestSession_ReplacesForgedCookie(t *testing.T) {
	tokens := session.NewTokenService("test-secret", time.Hour)
	forged, _, err := session.NewTokenService("other-secret", time.Hour).Issue("stolen-session")
	require.NoError(t, err)

	var seen string
	h := Session(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: forged})
	res := httptest.NewRecorder()
	h.ServeHTTP(res, req)

	assert.NotEqual(t, "stolen-session", seen)
	assert.NotEmpty(t, seen)
	assert.Len(t, res.Result().Cookies(), 1)
}

// ============================================
// Rate limiting
// ============================================

func TestRateLimit_Rejects(t *testing.T) {
	limiter := ratelimit.NewMemoryLimiter(time.Minute, 2, 10)
	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		res := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.1:1000"
		h.ServeHTTP(res, req)
		assert.Equal(t, http.StatusOK, res.Code)
	}

	res := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.1:2000" // same host, different port
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusTooManyRequests, res.Code)

	// A different host is unaffected.
	res = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.2:1000"
	h.ServeHTTP(res, req)
	assert.Equal(t, http.StatusOK, res.Code)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	h := RateLimit(brokenLimiter{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, res.Code)
}

// ============================================
// Body and time limits
// ============================================

func TestBodyLimit(t *testing.T) {
	h := BodyLimit(10)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.Copy(io.Discard, r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("tiny")))
	assert.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 100))))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestTimeout_FastHandlerPasses(t *testing.T) {
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestTimeout_SlowHandlerGets408(t *testing.T) {
	release := make(chan struct{})
	h := Timeout(20*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		// The late write must be discarded, not crash.
		w.WriteHeader(http.StatusOK)
	}))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusRequestTimeout, res.Code)
	assert.Contains(t, res.Body.String(), "Request timeout")
	close(release)
}

func TestTimeout_AbandonedHandlerKeepsSettingHeaders(t *testing.T) {
	// An abandoned handler hammering its header map must not race the
	// 408 path writing Content-Type on the response.
	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	h := Timeout(10*time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		for {
			select {
			case <-release:
				close(finished)
				return
			default:
				w.Header().Set("Content-Type", "application/json")
			}
		}
	}))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	<-started
	close(release)
	<-finished

	assert.Equal(t, http.StatusRequestTimeout, res.Code)
	assert.Contains(t, res.Body.String(), "Request timeout")
}

func TestTimeout_HandlerHeadersReachResponse(t *testing.T) {
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom", "yes")
		w.WriteHeader(http.StatusCreated)
	}))

	res := httptest.NewRecorder()
	h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "yes", res.Header().Get("X-Custom"))
}

func TestTimeout_RecoversPanic(t *testing.T) {
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	res := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
