package realtime

import (
	"fmt"
	"net/url"
	"strings"
)

// defaultWSURL is the last-resort push endpoint for local development.
const defaultWSURL = "ws://localhost:3000/socket"

// ResolveWSURL determines the push-channel endpoint with a fixed
// precedence: an explicit override wins; otherwise the endpoint is
// derived from the REST base URL's host with the protocol upgraded
// (http -> ws, https -> wss) and the /socket path; with neither
// configured, a localhost default applies.
func ResolveWSURL(override, apiBaseURL string) (string, error) {
	if override != "" {
		return normalizeWS(override)
	}

	if apiBaseURL != "" {
		u, err := url.Parse(apiBaseURL)
		if err != nil {
			return "", fmt.Errorf("deriving push URL from API base %q: %w", apiBaseURL, err)
		}
		if u.Host == "" {
			return "", fmt.Errorf("deriving push URL from API base %q: missing host", apiBaseURL)
		}
		scheme := "ws"
		if u.Scheme == "https" || u.Scheme == "wss" {
			scheme = "wss"
		}
		return scheme + "://" + u.Host + "/socket", nil
	}

	return defaultWSURL, nil
}

// normalizeWS upgrades an http(s) override to its ws(s) equivalent and
// fills in the /socket path when the override names only a host.
func normalizeWS(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parsing push URL %q: %w", raw, err)
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported push URL scheme %q", u.Scheme)
	}

	if u.Path == "" || u.Path == "/" {
		u.Path = "/socket"
	}
	return strings.TrimRight(u.String(), "/"), nil
}
