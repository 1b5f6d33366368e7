package middleware

import (
	"net"
	"net/http"
	"strings"
)

// APIKeyConfig configures the API key gateway
type APIKeyConfig struct {
	// Enabled turns the gate on; when false every request passes through
	Enabled bool
	// Header is the request header carrying the key, e.g. "X-API-Key"
	Header string
	// Keys are the accepted static keys (exact match)
	Keys []string
	// ExcludePaths are path prefixes that never require a key
	ExcludePaths []string
	// Debug bypasses the gate entirely, for development environments
	Debug bool
}

// docUserAgents are user-agent substrings that bypass the key check:
// API documentation tooling plus generic browser traffic. The "mozilla/5.0"
// entry matches nearly every real browser, so in practice the gate only
// blocks bare programmatic clients.
var docUserAgents = []string{
	"swagger-ui",
	"swagger",
	"openapi",
	"fastapi",
	"mozilla/5.0",
}

// bypassAPIKey decides whether a request skips the key check. Pure
// function of the request attributes so the heuristics are testable
// separately from the enforcement action. Each condition short-circuits.
func bypassAPIKey(cfg APIKeyConfig, path, userAgent, referer, remoteHost string) bool {
	for _, prefix := range cfg.ExcludePaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	ua := strings.ToLower(userAgent)
	for _, agent := range docUserAgents {
		if strings.Contains(ua, agent) {
			return true
		}
	}

	ref := strings.ToLower(referer)
	if strings.Contains(ref, "docs") || strings.Contains(ref, "swagger") {
		return true
	}

	if cfg.Debug {
		return true
	}

	switch remoteHost {
	case "127.0.0.1", "localhost", "::1":
		return true
	}

	return false
}

// APIKey gates all non-excluded routes behind a shared-secret header.
// Requests matching any bypass heuristic pass through untouched; the
// remainder must present a configured key or receive 401 with a
// WWW-Authenticate challenge.
func APIKey(cfg APIKeyConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			host := r.RemoteAddr
			if h, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				host = h
			}

			if bypassAPIKey(cfg, r.URL.Path, r.Header.Get("User-Agent"), r.Header.Get("Referer"), host) {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(cfg.Header)
			if key == "" {
				w.Header().Set("WWW-Authenticate", "ApiKey")
				http.Error(w, "API key required", http.StatusUnauthorized)
				return
			}

			valid := false
			for _, k := range cfg.Keys {
				if key == k {
					valid = true
					break
				}
			}
			if !valid {
				w.Header().Set("WWW-Authenticate", "ApiKey")
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
