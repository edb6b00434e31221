package server

import (
	"net/http"
	"time"
)

const (
	// CookieName carries the session id between requests.
	CookieName = "apdash_session"
	// CookieMaxAge is the browser-side lifetime of a session.
	CookieMaxAge = 12 * time.Hour
)

// SetSessionCookie hands sessionID to the browser. Secure follows r.TLS.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// ClearSessionCookie expires the cookie set by SetSessionCookie.
func ClearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// GetSessionCookie returns http.ErrNoCookie when the browser sent none.
func GetSessionCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}
