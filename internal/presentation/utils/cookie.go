package utils

import (
	"net/http"
	"time"

	"github.com/hilthontt/ember/internal/domain"
)

const CookieAuthToken = "x-auth-token"

func SetTokenCookie(w http.ResponseWriter, token string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieAuthToken,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(domain.RoomTTL),
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	})
}

func ClearTokenCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieAuthToken,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	})
}

func GetTokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieAuthToken)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// GetTokenFromRequest resolves the caller's bearer token. The header wins
// for API clients; browser traffic falls back to the cookie.
func GetTokenFromRequest(r *http.Request) string {
	if token := r.Header.Get("X-Auth-Token"); token != "" {
		return token
	}
	return GetTokenFromCookie(r)
}
