package main

import (
	"fmt"
	"net/url"
	"strings"
)

// extractToken accepts either a bare share token or a full share URL and
// returns the token. URLs carry the token as the last path segment
// ("https://host/share/<token>") or as a "token" query parameter.
func extractToken(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("empty share link")
	}

	if !strings.Contains(arg, "/") && !strings.Contains(arg, "?") {
		if !validToken(arg) {
			return "", fmt.Errorf("share token %q contains invalid characters", arg)
		}

		return arg, nil
	}

	u, err := url.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("parsing share link: %w", err)
	}

	if tok := u.Query().Get("token"); tok != "" {
		if !validToken(tok) {
			return "", fmt.Errorf("share token %q contains invalid characters", tok)
		}

		return tok, nil
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	tok := segments[len(segments)-1]
	if tok == "" || !validToken(tok) {
		return "", fmt.Errorf("no share token found in %q", arg)
	}

	return tok, nil
}

// validToken reports whether s looks like a share token: URL-safe
// characters only, no separators.
func validToken(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}

	return true
}
