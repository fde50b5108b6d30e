package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSetAndGetTokenCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	SetTokenCookie(rr, "tok-123", true)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies; want 1", len(cookies))
	}

	c := cookies[0]
	if c.Name != CookieAuthToken || c.Value != "tok-123" {
		t.Fatalf("cookie = %s=%s", c.Name, c.Value)
	}
	if !c.HttpOnly || !c.Secure || c.Path != "/" {
		t.Fatalf("cookie attributes wrong: %+v", c)
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Fatalf("SameSite = %v; want strict", c.SameSite)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	if got := GetTokenFromCookie(req); got != "tok-123" {
		t.Fatalf("GetTokenFromCookie = %q", got)
	}
}

func TestGetTokenFromRequestHeaderWins(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieAuthToken, Value: "from-cookie"})
	req.Header.Set("X-Auth-Token", "from-header")

	if got := GetTokenFromRequest(req); got != "from-header" {
		t.Fatalf("GetTokenFromRequest = %q; want header value", got)
	}

	req.Header.Del("X-Auth-Token")
	if got := GetTokenFromRequest(req); got != "from-cookie" {
		t.Fatalf("GetTokenFromRequest = %q; want cookie fallback", got)
	}
}

func TestGetTokenMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := GetTokenFromRequest(req); got != "" {
		t.Fatalf("GetTokenFromRequest on bare request = %q; want empty", got)
	}
}

func TestClearTokenCookie(t *testing.T) {
	rr := httptest.NewRecorder()
	ClearTokenCookie(rr, false)

	cookies := rr.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies; want 1", len(cookies))
	}
	if cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
		t.Fatalf("clear cookie did not expire: %+v", cookies[0])
	}
}
