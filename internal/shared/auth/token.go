package auth

import (
	"net/http"
	"strings"
)

// BearerToken extracts the token from an Authorization header value, accepting any
// casing of the scheme. It returns "" when no bearer token is present.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequestToken reads the bearer token of r, falling back to the "token" query parameter
// used by browsers that cannot set headers on websocket upgrades.
func RequestToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	if token := BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if r.URL == nil {
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
