package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/hirehub/internal/app/system/auth"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	users map[string]*auth.SessionUser
	calls int
}

func (f *fakeFetcher) FetchUser(ctx context.Context, clerkID string) *auth.SessionUser {
	f.calls++
	return f.users[clerkID]
}

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

// signedInCookies runs SignIn and returns the cookies it set.
func signedInCookies(t *testing.T, sm *auth.SessionManager, clerkID string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/", nil)
	if err := sm.SignIn(rec, req, clerkID); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected SignIn to set a cookie")
	}
	return cookies
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	_, err := auth.NewSessionManager("", "x", "", time.Hour, false, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestSignIn_EmptyIdentity(t *testing.T) {
	sm := newTestSessionManager(t)
	err := sm.SignIn(httptest.NewRecorder(), httptest.NewRequest("POST", "/", nil), "")
	if err != auth.ErrEmptyIdentity {
		t.Errorf("expected ErrEmptyIdentity, got %v", err)
	}
}

func TestLoadSessionUser_ResolvesLocalUser(t *testing.T) {
	sm := newTestSessionManager(t)
	fetcher := &fakeFetcher{users: map[string]*auth.SessionUser{
		"user_123": {ID: "64b000000000000000000001", ClerkID: "user_123", Name: "Ada"},
	}}
	sm.SetUserFetcher(fetcher)

	var got *auth.SessionUser
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/api/notifications", nil)
	for _, c := range signedInCookies(t, sm, "user_123") {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ClerkID != "user_123" || got.Name != "Ada" {
		t.Errorf("unexpected user: %+v", got)
	}
	if fetcher.calls != 1 {
		t.Errorf("expected 1 fetch, got %d", fetcher.calls)
	}
}

func TestLoadSessionUser_UnknownIdentityStaysAnonymous(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SetUserFetcher(&fakeFetcher{users: map[string]*auth.SessionUser{}})

	signedIn := true
	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, signedIn = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	for _, c := range signedInCookies(t, sm, "user_missing") {
		req.AddCookie(c)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if signedIn {
		t.Error("expected anonymous request for unknown identity")
	}
}

func TestLoadSessionUser_TamperedCookieIgnored(t *testing.T) {
	sm := newTestSessionManager(t)
	fetcher := &fakeFetcher{users: map[string]*auth.SessionUser{}}
	sm.SetUserFetcher(fetcher)

	handler := sm.LoadSessionUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-signed-value"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if fetcher.calls != 0 {
		t.Errorf("expected no fetch for tampered cookie, got %d", fetcher.calls)
	}
}

func TestRequireSignedIn_NoUser_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/notifications", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireSignedIn_WithUser_PassesThrough(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil), &auth.SessionUser{ID: "64b000000000000000000001"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}
}

func TestSignOut_ExpiresCookie(t *testing.T) {
	sm := newTestSessionManager(t)
	rec := httptest.NewRecorder()
	if err := sm.SignOut(rec, httptest.NewRequest("POST", "/", nil)); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expired cookie, got %+v", cookies)
	}
}
